// Command gsdump inspects GraphScript ADF files: container metadata,
// decoded nodes and edges with layout positions, hash tooling, and
// raw hex windows for format debugging.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	gsrc "github.com/gigaHours/madmax-gsrc-editor"
	"github.com/gigaHours/madmax-gsrc-editor/internal/core"
	"github.com/gigaHours/madmax-gsrc-editor/internal/hashes"
)

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:  "gsdump",
		Usage: "inspect GraphScript graphs inside ADF containers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "dict",
				Usage: "merge an extra name dictionary `FILE` before decoding",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			if path := c.String("dict"); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open dictionary: %w", err)
				}
				defer f.Close()
				if err := gsrc.LoadDictionary(f); err != nil {
					return err
				}
				log.WithField("file", path).Debug("dictionary merged")
			}
			log.WithField("names", hashes.Len()).Debug("hash registry ready")
			return nil
		},
		Commands: []*cli.Command{
			infoCommand(),
			dumpCommand(),
			hashCommand(),
			hexdumpCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func readFile(c *cli.Context) ([]byte, error) {
	if c.NArg() < 1 {
		return nil, fmt.Errorf("expected a .gsc file argument")
	}
	path := c.Args().First()
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"file": path,
		"size": humanize.Bytes(uint64(len(buf))),
	}).Debug("file loaded")
	return buf, nil
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print container header, instances, and type directory",
		ArgsUsage: "<file.gsc>",
		Action: func(c *cli.Context) error {
			buf, err := readFile(c)
			if err != nil {
				return err
			}
			cont, err := core.ReadContainer(buf)
			if err != nil {
				return err
			}

			fmt.Printf("version:     %d\n", cont.Version)
			fmt.Printf("byte order:  %v\n", cont.Order)
			if cont.Description != "" {
				fmt.Printf("description: %s\n", cont.Description)
			}
			if cont.Version >= core.Version4 {
				fmt.Printf("declared:    %s\n", humanize.Bytes(uint64(cont.DeclaredSize)))
			}

			fmt.Printf("\ninstances (%d):\n", len(cont.Instances))
			for i, inst := range cont.Instances {
				fmt.Printf("  [%d] %-24s type=%s payload=%s @ 0x%X\n",
					i, inst.Name, hashes.Resolve(inst.TypeHash),
					humanize.Bytes(uint64(inst.PayloadSize)), inst.PayloadOffset)
			}

			fmt.Printf("\ntypes (%d):\n", len(cont.Types))
			for _, t := range cont.Types {
				name := t.Name
				if name == "" {
					name = hashes.Resolve(t.NameHash)
				}
				fmt.Printf("  %-12s %-24s size=%d align=%d members=%d\n",
					t.Kind, name, t.Size, t.Alignment, len(t.Members))
				for _, m := range t.Members {
					fmt.Printf("    +0x%06X %-24s type=%s size=%d\n",
						m.Offset, hashes.Resolve(m.NameHash), hashes.Resolve(m.TypeHash), m.Size)
				}
			}
			return nil
		},
	}
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "decode a graph and print nodes, edges, and positions",
		ArgsUsage: "<file.gsc>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "instance",
				Usage: "instance `INDEX` to decode",
			},
		},
		Action: func(c *cli.Context) error {
			buf, err := readFile(c)
			if err != nil {
				return err
			}
			doc, err := gsrc.DecodeInstance(buf, c.Int("instance"))
			if err != nil {
				return err
			}

			fmt.Printf("nodes (%d):\n", len(doc.Nodes))
			for _, n := range doc.Nodes {
				fmt.Printf("  [%d] %s at (%.0f, %.0f)\n",
					n.Index, n.ClassName, n.Position.X, n.Position.Y)
				for _, p := range n.Parameters {
					fmt.Printf("      %s: %s (%s)\n", p.Name, p.Display, p.Type)
				}
				for _, pin := range n.InputPins {
					fmt.Printf("      in  %s\n", pin.Name)
				}
				for _, pin := range n.OutputPins {
					fmt.Printf("      out %s\n", pin.Name)
				}
				for _, pin := range n.VariablePins {
					fmt.Printf("      var %s\n", pin.Name)
				}
			}

			fmt.Printf("\nedges (%d):\n", len(doc.Edges))
			for _, e := range doc.Edges {
				fmt.Printf("  %d.%s -> %d.%s [%s]\n",
					e.SourceIndex, gsrc.ResolveHash(e.SourcePinHash),
					e.TargetIndex, gsrc.ResolveHash(e.TargetPinHash),
					e.Kind)
			}
			return nil
		},
	}
}

func hashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "hash names, or reverse-lookup 0x-prefixed values",
		ArgsUsage: "<name-or-0xhash>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("expected at least one argument")
			}
			for _, arg := range c.Args().Slice() {
				if strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X") {
					v, err := strconv.ParseUint(arg[2:], 16, 32)
					if err != nil {
						return fmt.Errorf("bad hash %q: %w", arg, err)
					}
					fmt.Printf("0x%08X  %s\n", uint32(v), gsrc.ResolveHash(uint32(v)))
					continue
				}
				fmt.Printf("0x%08X  %s\n", gsrc.HashName(arg), arg)
			}
			return nil
		},
	}
}

func hexdumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "hexdump",
		Usage:     "dump raw bytes from a file window",
		ArgsUsage: "<file.gsc>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "offset",
				Usage: "window start `OFFSET`",
			},
			&cli.IntFlag{
				Name:  "length",
				Value: 128,
				Usage: "window `LENGTH` in bytes",
			},
		},
		Action: func(c *cli.Context) error {
			buf, err := readFile(c)
			if err != nil {
				return err
			}

			offset := c.Int64("offset")
			length := c.Int("length")
			if offset < 0 || offset >= int64(len(buf)) {
				return fmt.Errorf("offset %d outside file of %s", offset, humanize.Bytes(uint64(len(buf))))
			}
			if length < 1 {
				return fmt.Errorf("invalid length: %d", length)
			}
			end := offset + int64(length)
			if end > int64(len(buf)) {
				end = int64(len(buf))
			}

			window := buf[offset:end]
			for i := 0; i < len(window); i += 16 {
				row := window[i:]
				if len(row) > 16 {
					row = row[:16]
				}
				var hex, ascii strings.Builder
				for j, b := range row {
					if j == 8 {
						hex.WriteByte(' ')
					}
					fmt.Fprintf(&hex, "%02x ", b)
					if b >= 0x20 && b < 0x7F {
						ascii.WriteByte(b)
					} else {
						ascii.WriteByte('.')
					}
				}
				fmt.Printf("%08x  %-49s |%s|\n", offset+int64(i), hex.String(), ascii.String())
			}
			return nil
		},
	}
}
