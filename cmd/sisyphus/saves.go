package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/vovakirdan/sisyphus/internal/storage"
)

var flagNamespace string

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Inspect and edit raw save data",
	Long: `Read and write the JSON documents games save under their root keys.

Paths use gjson syntax, e.g. "sisyphus.scores.0.score".
SSH players are stored in namespaces named "ssh:<user>"; the local
player is the empty namespace.

Examples:
  sisyphus saves list
  sisyphus saves get kh sisyphus.seed
  sisyphus saves set kh sisyphus.seed -- -1
  sisyphus saves get kh --namespace ssh:alice
  sisyphus saves clear kh`,
}

var savesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List root keys",
	Args:  cobra.NoArgs,
	Run:   runSavesList,
}

var savesNamespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "List namespaces with saved data",
	Args:  cobra.NoArgs,
	Run:   runSavesNamespaces,
}

var savesGetCmd = &cobra.Command{
	Use:   "get <key> [path]",
	Short: "Print a saved value",
	Args:  cobra.RangeArgs(1, 2),
	Run:   runSavesGet,
}

var savesSetCmd = &cobra.Command{
	Use:   "set <key> <path> <json>",
	Short: "Replace a value inside a saved document",
	Args:  cobra.ExactArgs(3),
	Run:   runSavesSet,
}

var savesClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Delete one root key, or the whole namespace",
	Args:  cobra.MaximumNArgs(1),
	Run:   runSavesClear,
}

func init() {
	savesCmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "Save namespace (default: local player)")
	savesCmd.AddCommand(savesListCmd, savesNamespacesCmd, savesGetCmd, savesSetCmd, savesClearCmd)
}

// withNamespace opens the store and runs fn on the selected namespace.
func withNamespace(fn func(store *storage.Store, ns *storage.Namespace) error) {
	store, err := openStore(loadConfig())
	if err != nil {
		fail("cannot open saves database: %v", err)
	}
	err = fn(store, store.Namespace(flagNamespace))
	store.Close()
	if err != nil {
		fail("%v", err)
	}
}

func runSavesList(_ *cobra.Command, _ []string) {
	withNamespace(func(store *storage.Store, ns *storage.Namespace) error {
		items, err := store.Items(ns.Name())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No saved keys.")
			return nil
		}
		for _, it := range items {
			fmt.Printf("  %-24s  %6d bytes  %s\n", it.Key, len(it.Value), it.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	})
}

func runSavesNamespaces(_ *cobra.Command, _ []string) {
	withNamespace(func(store *storage.Store, _ *storage.Namespace) error {
		names, err := store.Namespaces()
		if err != nil {
			return err
		}
		for _, n := range names {
			if n == "" {
				n = "(local)"
			}
			fmt.Println(n)
		}
		return nil
	})
}

func runSavesGet(_ *cobra.Command, args []string) {
	withNamespace(func(_ *storage.Store, ns *storage.Namespace) error {
		value, ok, err := ns.GetItem(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no value under %q", args[0])
		}

		raw := []byte(value)
		if len(args) == 2 {
			res := gjson.Get(value, args[1])
			if !res.Exists() {
				return fmt.Errorf("path %q not found in %q", args[1], args[0])
			}
			raw = []byte(res.Raw)
		}
		if !gjson.ValidBytes(raw) {
			fmt.Println(string(raw))
			return nil
		}

		out := pretty.Pretty(raw)
		if !flagNoColor {
			out = pretty.Color(out, nil)
		}
		os.Stdout.Write(out)
		return nil
	})
}

func runSavesSet(_ *cobra.Command, args []string) {
	key, path, value := args[0], args[1], args[2]
	if !gjson.Valid(value) {
		fail("%q is not valid JSON", value)
	}

	withNamespace(func(_ *storage.Store, ns *storage.Namespace) error {
		doc, ok, err := ns.GetItem(key)
		if err != nil {
			return err
		}
		if !ok || !gjson.Parse(doc).IsObject() {
			doc = "{}"
		}

		updated, err := sjson.SetRaw(doc, path, value)
		if err != nil {
			return fmt.Errorf("cannot set %q: %w", path, err)
		}
		if err := ns.SetItem(key, updated); err != nil {
			return err
		}
		fmt.Printf("%s %s = %s\n", key, path, pretty.Ugly([]byte(value)))
		return nil
	})
}

func runSavesClear(_ *cobra.Command, args []string) {
	withNamespace(func(_ *storage.Store, ns *storage.Namespace) error {
		if len(args) == 0 {
			return ns.Clear()
		}
		return ns.RemoveItem(args[0])
	})
}
