package main

import (
	"encoding/hex"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"strconv"

	"github.com/bodgit/grw"
	"github.com/urfave/cli/v2"
)

const defaultDB = "grw.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

// workshop builds a Workshop from the global flags. The database is only
// opened when a path was given and exists, or when required is set.
func workshop(c *cli.Context, required bool) (*grw.Workshop, func(), error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	dbPath := c.String("db")
	if !required {
		if _, err := os.Stat(dbPath); err != nil {
			return grw.New(nil, logger), func() {}, nil
		}
	}

	db, err := grw.NewGameDB(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return grw.New(db, logger), func() { db.Close() }, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	return int(v), err
}

func main() {
	app := cli.NewApp()

	app.Name = "grw"
	app.Usage = "Mega Drive / Genesis ROM workshop"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"GRW_DB"},
			Value:   defaultDB,
			Usage:   "path to game database",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "analyze",
			Usage:     "Analyze ROM structure and identify the game",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "stats",
					Usage: "include byte statistics",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				w, closeDB, err := workshop(c, false)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closeDB()

				info, err := w.Analyze(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("Game:             %s\n", info.Name)
				if info.KnownAs != "" {
					fmt.Printf("Known as:         %s\n", info.KnownAs)
				}
				fmt.Printf("Region:           %s\n", info.Region)
				fmt.Printf("Size:             %d bytes\n", info.Size)
				fmt.Printf("Header valid:     %t\n", info.HeaderValid)
				fmt.Printf("Content CRC:      %s\n", info.Checksum)
				fmt.Printf("Internal checksum: stored 0x%04X, calculated 0x%04X (%t)\n",
					info.InternalStored, info.InternalCalculated, info.InternalChecksumValid)

				if c.Bool("stats") {
					stats, err := w.Statistics(c.Args().First())
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					fmt.Printf("Null bytes:       %d\n", stats.NullBytes)
					fmt.Printf("0xFF bytes:       %d\n", stats.FFBytes)
					fmt.Printf("Unique bytes:     %d\n", stats.UniqueBytes)
					fmt.Printf("Entropy:          %.3f bits/byte\n", stats.Entropy)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan a directory tree and write identification reports",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				w, closeDB, err := workshop(c, false)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closeDB()

				if err := w.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
		{
			Name:  "palette",
			Usage: "Extract, convert and apply color palettes",
			Subcommands: []*cli.Command{
				{
					Name:      "export",
					Usage:     "Extract palettes to a JSON document",
					ArgsUsage: "FILE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output file"},
						&cli.IntFlag{Name: "max", Usage: "scan cap", Value: 100},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						output := c.String("output")
						if output == "" {
							output = "palettes.json"
						}
						if err := w.ExportPalettes(c.Args().First(), c.Int("max"), output); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
				{
					Name:      "apply",
					Usage:     "Apply a JSON palette to a ROM",
					ArgsUsage: "FILE INDEX PALETTE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output ROM"},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 3 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						index, err := parseInt(c.Args().Get(1))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						p, err := w.ImportPalette(c.Args().Get(2))
						if err != nil {
							return cli.NewExitError(err, 1)
						}

						output := c.String("output")
						if output == "" {
							output = c.Args().First() + ".patched"
						}
						if err := w.ApplyPalette(c.Args().First(), index, p, output); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
				{
					Name:      "from-image",
					Usage:     "Quantize an image to a 16 color Genesis palette",
					ArgsUsage: "IMAGE",
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						p, err := w.PaletteFromImage(c.Args().First())
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						for i, col := range p {
							fmt.Printf("Color %2d: RGB(%3d, %3d, %3d)\n", i, col.R, col.G, col.B)
						}
						return nil
					},
				},
			},
		},
		{
			Name:  "text",
			Usage: "Extract and replace text strings",
			Subcommands: []*cli.Command{
				{
					Name:      "extract",
					Usage:     "Extract printable strings to a JSON document",
					ArgsUsage: "FILE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output file"},
						&cli.IntFlag{Name: "min-length", Usage: "minimum string length", Value: 4},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						output := c.String("output")
						if output == "" {
							output = "strings.json"
						}
						if err := w.ExportText(c.Args().First(), c.Int("min-length"), nil, output); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
				{
					Name:      "replace",
					Usage:     "Replace a string at a known offset",
					ArgsUsage: "FILE OFFSET OLD NEW",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output ROM"},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 4 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						offset, err := parseInt(c.Args().Get(1))
						if err != nil {
							return cli.NewExitError(err, 1)
						}

						output := c.String("output")
						if output == "" {
							output = c.Args().First() + ".patched"
						}
						if err := w.ReplaceText(c.Args().First(), offset, c.Args().Get(2), c.Args().Get(3), output); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
			},
		},
		{
			Name:  "assets",
			Usage: "Extract graphics, tilemaps and sprites",
			Subcommands: []*cli.Command{
				{
					Name:      "index",
					Usage:     "Extract all asset types and write an index",
					ArgsUsage: "FILE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "dir, d", Usage: "output directory", Value: cwd},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						index, err := w.GraphicsIndex(c.Args().First(), c.String("dir"))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						fmt.Println(index)
						return nil
					},
				},
				{
					Name:      "tiles",
					Usage:     "Extract graphics-like tiles as binary files",
					ArgsUsage: "FILE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "dir, d", Usage: "output directory", Value: cwd},
						&cli.IntFlag{Name: "max", Usage: "maximum tiles", Value: 1000},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						result, err := w.ExtractGraphics(c.Args().First(), c.String("dir"), c.Int("max"))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						fmt.Printf("Extracted %d tiles to %s\n", result.Extracted, result.OutputDir)
						return nil
					},
				},
			},
		},
		{
			Name:  "render",
			Usage: "Render tile graphics to PNG",
			Subcommands: []*cli.Command{
				{
					Name:      "sheet",
					Usage:     "Render graphics-like tiles as a tile sheet",
					ArgsUsage: "FILE PALETTE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output PNG", Value: "sheet.png"},
						&cli.IntFlag{Name: "max", Usage: "maximum tiles", Value: 256},
						&cli.IntFlag{Name: "columns", Usage: "tiles per row", Value: 16},
						&cli.IntFlag{Name: "scale", Usage: "scale factor", Value: 2},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						p, err := w.ImportPalette(c.Args().Get(1))
						if err != nil {
							return cli.NewExitError(err, 1)
						}

						r := w.NewRenderer(png.Encode)
						n, err := r.ExtractAndRender(c.Args().First(), p, c.Int("max"), c.Int("columns"), c.Int("scale"), c.String("output"))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						fmt.Printf("Rendered %d tiles to %s\n", n, c.String("output"))
						return nil
					},
				},
				{
					Name:      "tile",
					Usage:     "Render a single tile",
					ArgsUsage: "FILE OFFSET PALETTE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output PNG", Value: "tile.png"},
						&cli.IntFlag{Name: "scale", Usage: "scale factor", Value: 4},
						&cli.BoolFlag{Name: "grid", Usage: "overlay a pixel grid"},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 3 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						offset, err := parseInt(c.Args().Get(1))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						p, err := w.ImportPalette(c.Args().Get(2))
						if err != nil {
							return cli.NewExitError(err, 1)
						}

						r := w.NewRenderer(png.Encode)
						if c.Bool("grid") {
							err = r.PreviewTile(c.Args().First(), offset, p, c.Int("scale"), true, c.String("output"))
						} else {
							err = r.RenderTile(c.Args().First(), offset, p, c.Int("scale"), c.String("output"))
						}
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
			},
		},
		{
			Name:  "hex",
			Usage: "View, search, diff and patch at the byte level",
			Subcommands: []*cli.Command{
				{
					Name:      "view",
					Usage:     "Hex dump a region",
					ArgsUsage: "FILE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "offset", Usage: "start offset", Value: "0"},
						&cli.IntFlag{Name: "length", Usage: "bytes to show", Value: 256},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						offset, err := parseInt(c.String("offset"))
						if err != nil {
							return cli.NewExitError(err, 1)
						}

						lines, err := w.HexView(c.Args().First(), offset, c.Int("length"))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						for _, line := range lines {
							fmt.Println(line)
						}
						return nil
					},
				},
				{
					Name:      "search",
					Usage:     "Search for a hex byte pattern",
					ArgsUsage: "FILE PATTERN",
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						pattern, err := hex.DecodeString(c.Args().Get(1))
						if err != nil {
							return cli.NewExitError(err, 1)
						}

						offsets, err := w.SearchBytes(c.Args().First(), pattern)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						for _, offset := range offsets {
							fmt.Printf("0x%08X\n", offset)
						}
						return nil
					},
				},
				{
					Name:      "patch",
					Usage:     "Diff two ROMs and write a JSON patch",
					ArgsUsage: "ORIGINAL MODIFIED",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output file", Value: "changes.patch.json"},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						patch, err := w.CreatePatch(c.Args().Get(0), c.Args().Get(1), c.String("output"))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						fmt.Printf("%d changes written to %s\n", patch.TotalChanges, c.String("output"))
						return nil
					},
				},
				{
					Name:      "write",
					Usage:     "Overwrite bytes at an offset",
					ArgsUsage: "FILE OFFSET BYTES",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "output, o", Usage: "output ROM"},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 3 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						w, closeDB, err := workshop(c, false)
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer closeDB()

						offset, err := parseInt(c.Args().Get(1))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						data, err := hex.DecodeString(c.Args().Get(2))
						if err != nil {
							return cli.NewExitError(err, 1)
						}

						output := c.String("output")
						if output == "" {
							output = c.Args().First() + ".patched"
						}
						if err := w.WriteBytes(c.Args().First(), offset, data, output); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
			},
		},
		{
			Name:  "db",
			Usage: "Manage the game database",
			Subcommands: []*cli.Command{
				{
					Name:      "import",
					Usage:     "Import a DAT file of known games",
					ArgsUsage: "FILE",
					Action: func(c *cli.Context) error {
						if c.NArg() < 1 {
							cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
						}

						db, err := grw.NewGameDB(c.String("db"))
						if err != nil {
							return cli.NewExitError(err, 1)
						}
						defer db.Close()

						if err := db.ImportDAT(c.Args().First()); err != nil {
							return cli.NewExitError(err, 1)
						}
						return nil
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
