// Command lsmgo-demo is a thin, local-only driver over package lsm: it
// loads internal/config, wires internal/logging, opens or creates a tree
// of string keys and values under the configured data directory, and runs
// one subcommand against it. There is no server and no network surface,
// following the corpus's own cmd/demo shape minus the HTTP client/server
// half of it.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lsmgo/codec"
	"lsmgo/internal/config"
	"lsmgo/internal/logging"
	"lsmgo/levelset"
	"lsmgo/lsm"
	"lsmgo/sstable"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "lsmgo-demo:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("lsmgo-demo", flag.ExitOnError)
	configPath := fs.String("config", "./config.yaml", "path to a YAML config file (missing file falls back to defaults)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: lsmgo-demo [-config path] <put|get|delete|flush|compact|archive> ...")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.Logger)

	cmd, cmdArgs := rest[0], rest[1:]

	if cmd == "archive" {
		return runArchive(cmdArgs)
	}

	tree, err := openTree(cfg)
	if err != nil {
		return fmt.Errorf("open tree at %s: %w", cfg.DataDir, err)
	}
	defer func() {
		if cerr := tree.Close(); cerr != nil {
			slog.Error("close tree", "err", cerr)
		}
	}()

	switch cmd {
	case "put":
		if len(cmdArgs) != 2 {
			return fmt.Errorf("usage: lsmgo-demo put <key> <value>")
		}
		if err := tree.Insert(cmdArgs[0], cmdArgs[1]); err != nil {
			return err
		}
		fmt.Printf("OK\n")
	case "get":
		if len(cmdArgs) != 1 {
			return fmt.Errorf("usage: lsmgo-demo get <key>")
		}
		v, ok, err := tree.Get(cmdArgs[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(absent)")
			return nil
		}
		fmt.Println(v)
	case "delete":
		if len(cmdArgs) != 1 {
			return fmt.Errorf("usage: lsmgo-demo delete <key>")
		}
		v, ok, err := tree.Delete(cmdArgs[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(absent)")
			return nil
		}
		fmt.Println("deleted, prior value:", v)
	case "flush":
		if err := tree.Flush(); err != nil {
			return err
		}
		fmt.Println("OK")
	case "compact":
		if err := tree.Compact(); err != nil {
			return err
		}
		fmt.Println("OK")
	default:
		return fmt.Errorf("unknown subcommand %q", cmd)
	}
	return nil
}

func openTree(cfg config.Config) (*lsm.Tree[string, string], error) {
	treeCfg := lsm.Config{
		BlockSize:    cfg.Tree.BlockSize,
		MemtableSize: cfg.Tree.MemtableSize,
		Level0Size:   cfg.Tree.Level0Size,
		BloomFPRate:  cfg.Bloom.FPRate,
	}

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "state")); err == nil {
		return lsm.Load[string, string](cfg.DataDir, codec.StringKeyCodec(), codec.StringValueCodec())
	}
	return lsm.New[string, string](cfg.DataDir, treeCfg, codec.StringKeyCodec(), codec.StringValueCodec())
}

// runArchive compresses or decompresses a single SSTable data file named
// on the command line, exercising package compression's LZ77 codec
// outside of the tree's live read/write path.
func runArchive(args []string) error {
	fs := flag.NewFlagSet("lsmgo-demo archive", flag.ExitOnError)
	decompress := fs.Bool("d", false, "decompress instead of compress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: lsmgo-demo archive [-d] <src> <dst>")
	}
	src, dst := rest[0], rest[1]

	if *decompress {
		if err := sstable.DecompressDataFile(src, dst); err != nil {
			return err
		}
		fmt.Println("decompressed", src, "->", dst)
		return nil
	}

	base := strings.TrimSuffix(src, ".data")
	paths := levelset.Paths{Data: src, Index: base + ".idx", Bloom: base + ".bloom"}
	tbl, err := sstable.Open[string, string](paths, codec.StringKeyCodec(), codec.StringValueCodec())
	if err != nil {
		return fmt.Errorf("open table for %s: %w", src, err)
	}
	if err := tbl.CompressDataFile(dst); err != nil {
		return err
	}
	fmt.Println("compressed", src, "->", dst)
	return nil
}
