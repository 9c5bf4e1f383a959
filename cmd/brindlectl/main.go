// Command brindlectl is a small CLI for exercising the codec directly:
// parsing, canonicalizing, merging, and content-hashing bencode files
// without standing up the daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brindle-bt/brindle/bencode"
	"github.com/brindle-bt/brindle/pkg/log"
	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/store"
	"github.com/brindle-bt/brindle/variant"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "brindlectl",
		Short: "Inspect and manipulate bencode files",
	}

	rootCmd.AddCommand(parseCmd(), canonCmd(), mergeCmd(), hashCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a bencode file and pretty-print its tree",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			buf := mustReadFile(args[0])
			v, _, err := bencode.Parse(buf)
			if err != nil {
				log.Fatal(err)
			}
			printVariant(v, 0)
		},
	}
}

func canonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canon <file>",
		Short: "Re-serialize a bencode file into canonical form",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			buf := mustReadFile(args[0])
			v, _, err := bencode.Parse(buf)
			if err != nil {
				log.Fatal(err)
			}

			canonical := bencode.Serialize(v)

			// Canonicalization must be idempotent: serializing the
			// canonical bytes again must reproduce them exactly.
			v2, _, err := bencode.Parse(canonical)
			if err != nil {
				log.Fatal(err)
			}
			if string(bencode.Serialize(v2)) != string(canonical) {
				log.Fatal("canonicalization is not idempotent for this input")
			}

			os.Stdout.Write(canonical)
		},
	}
}

func mergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <dest> <src>",
		Short: "Merge src onto dest and print the result",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			destBuf := mustReadFile(args[0])
			srcBuf := mustReadFile(args[1])

			dest, _, err := bencode.Parse(destBuf)
			if err != nil {
				log.Fatal(err)
			}
			src, _, err := bencode.Parse(srcBuf)
			if err != nil {
				log.Fatal(err)
			}

			bencode.Merge(dest, src)
			os.Stdout.Write(bencode.Serialize(dest))
		},
	}
}

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Print the content address of a file's canonical serialization",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			buf := mustReadFile(args[0])
			v, _, err := bencode.Parse(buf)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(store.Address(bencode.Serialize(v)))
		},
	}
}

func mustReadFile(path string) []byte {
	buf, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	return buf
}

func printVariant(v *variant.Variant, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	switch v.Kind() {
	case variant.Int:
		n, _ := v.GetInt()
		fmt.Printf("%sint: %d\n", indent, n)
	case variant.Bool:
		b, _ := v.GetBool()
		fmt.Printf("%sbool: %v\n", indent, b)
	case variant.Real:
		f, _ := v.GetReal()
		fmt.Printf("%sreal: %f\n", indent, f)
	case variant.String:
		s, _ := v.GetStrView()
		fmt.Printf("%sstring: %q\n", indent, s)
	case variant.List:
		fmt.Printf("%slist:\n", indent)
		for _, child := range v.Elements() {
			printVariant(child, depth+1)
		}
	case variant.Dict:
		fmt.Printf("%sdict:\n", indent)
		for _, entry := range v.Entries() {
			key, _ := quark.Lookup(entry.Key)
			fmt.Printf("%s  %s:\n", indent, key)
			printVariant(entry.Value, depth+2)
		}
	}
}
