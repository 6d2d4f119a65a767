// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	bitvec "github.com/facebookincubator/go-bitvec"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "bitvec",
		Usage: "build, inspect and exercise atomic bit vectors",
		Commands: []*cli.Command{
			{
				Name:  "compile",
				Usage: "compile a list of bit indices into a serialized bit vector",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"out", "o"},
						Value:   "bv.bin",
						Usage:   "name of the file to write the bit vector to",
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"in", "i"},
						Usage:   "file to read indices from, one per line (default is stdin)",
					},
					&cli.UintFlag{
						Name:    "size",
						Aliases: []string{"s"},
						Usage:   "number of bits in the vector (default is the largest index + 1)",
					},
					&cli.BoolFlag{
						Name:    "compress",
						Aliases: []string{"z"},
						Usage:   "whether to zstd compress the word payload",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the non-zero words after building",
					},
				},
				Action: compile,
			},
			{
				Name:  "describe",
				Usage: "read the header from a bit vector file and describe it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"in", "i"},
						Usage:   "file containing the bit vector",
					},
				},
				Action: func(c *cli.Context) error {
					h, err := bitvec.ReadHeaderFromPath(c.String("input"))
					if err != nil {
						return fmt.Errorf("describe: can't read input file: %w", err)
					}
					fmt.Printf("Bit vector version %d\n", h.Version)
					not := "not "
					if h.Compressed {
						not = ""
					}
					fmt.Printf("%scompressed\n", not)
					cfg := h.Config()
					cfg.ExplainIndent(os.Stdout, "  ")
					return nil
				},
			},
			{
				Name:      "test",
				Usage:     "report whether bits are set in an uncompressed bit vector file",
				ArgsUsage: "INDEX...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"in", "i"},
						Usage:   "file containing the bit vector",
					},
				},
				Action: func(c *cli.Context) error {
					d, err := bitvec.OpenReadOnlyFromPath(c.String("input"))
					if err != nil {
						return fmt.Errorf("test: can't read input file: %w", err)
					}
					defer d.Close()
					for _, arg := range c.Args().Slice() {
						idx, err := strconv.ParseUint(arg, 10, 0)
						if err != nil {
							return fmt.Errorf("test: bad index %q: %w", arg, err)
						}
						set, err := d.Lookup(uint(idx))
						if err != nil {
							return fmt.Errorf("test: %w", err)
						}
						fmt.Printf("bit %d: %t\n", idx, set)
					}
					return nil
				},
			},
			{
				Name:  "stress",
				Usage: "race goroutines over the bit lock protocol and verify exclusion",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "goroutines",
						Aliases: []string{"g"},
						Value:   runtime.GOMAXPROCS(0),
						Usage:   "number of competing goroutines",
					},
					&cli.UintFlag{
						Name:    "bits",
						Aliases: []string{"b"},
						Value:   4096,
						Usage:   "number of bits to contend on",
					},
					&cli.IntFlag{
						Name:    "rounds",
						Aliases: []string{"r"},
						Value:   10,
						Usage:   "number of rounds to run",
					},
				},
				Action: stress,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func compile(c *cli.Context) error {
	output := c.String("output")
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		return fmt.Errorf("refusing to over-write existing file: %s", output)
	}
	if c.NArg() > 0 {
		return fmt.Errorf("unexpected command line arguments: %q", c.Args().Slice())
	}

	var reader io.Reader
	if c.IsSet("input") {
		f, err := os.Open(c.String("input"))
		if err != nil {
			return err
		}
		reader = f
		defer f.Close()
	} else {
		reader = os.Stdin
	}

	start := time.Now()
	indices, limit, err := readIndices(reader)
	if err != nil {
		return err
	}

	size := limit
	if c.IsSet("size") {
		size = c.Uint("size")
		if size < limit {
			return fmt.Errorf("index %d does not fit in %d bits", limit-1, size)
		}
	}
	v := bitvec.New(size)
	for _, idx := range indices {
		v.Set(idx)
	}
	log.Printf("built in memory bit vector of %d bits (%d set) in %s", v.Size(), v.Count(), time.Since(start))

	o, e := os.Create(output)
	if e != nil {
		return fmt.Errorf("error opening %s: %s", output, e)
	}
	defer o.Close()
	var n int64
	if c.Bool("compress") {
		n, err = v.WriteCompressedTo(o)
	} else {
		n, err = v.WriteTo(o)
	}
	if err != nil {
		return fmt.Errorf("error writing bit vector: %w", err)
	}
	log.Printf("wrote %d bytes to %s", n, output)
	if c.Bool("dump") {
		v.DebugDump(os.Stdout)
	}
	return nil
}

// readIndices parses one bit index per line, skipping blank lines, and
// returns them with the smallest size that holds them all
func readIndices(r io.Reader) (indices []uint, limit uint, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			continue
		}
		idx, err := strconv.ParseUint(s, 10, 0)
		if err != nil {
			return nil, 0, fmt.Errorf("bad index %q: %w", s, err)
		}
		if uint(idx) == ^uint(0) {
			return nil, 0, fmt.Errorf("index %d does not fit in any bit vector", idx)
		}
		indices = append(indices, uint(idx))
		if uint(idx)+1 > limit {
			limit = uint(idx) + 1
		}
	}
	return indices, limit, scanner.Err()
}

func stress(c *cli.Context) error {
	goroutines := c.Int("goroutines")
	nbits := c.Uint("bits")
	if goroutines < 1 || nbits == 0 {
		return fmt.Errorf("need at least one goroutine and one bit")
	}
	v := bitvec.New(nbits)
	for round := 0; round < c.Int("rounds"); round++ {
		v.Reset(nbits)
		start := time.Now()

		// every bit must be won by exactly one goroutine
		wins := make([]uint, goroutines)
		g, _ := errgroup.WithContext(c.Context)
		for w := 0; w < goroutines; w++ {
			g.Go(func() error {
				for i := uint(0); i < nbits; i++ {
					if v.TryLock(i) {
						wins[w]++
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		var total uint
		for _, n := range wins {
			total += n
		}
		if total != nbits || v.Count() != nbits {
			return fmt.Errorf("round %d: %d bits won and %d set, expected %d", round, total, v.Count(), nbits)
		}

		// non-atomic counters guarded by bit locks must not lose updates
		v.ClearAll()
		counters := make([]uint, nbits)
		g, ctx := errgroup.WithContext(c.Context)
		for w := 0; w < goroutines; w++ {
			g.Go(func() error {
				for i := uint(0); i < nbits; i++ {
					if err := v.LockContext(ctx, i); err != nil {
						return err
					}
					counters[i]++
					v.Unlock(i)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for i, n := range counters {
			if n != uint(goroutines) {
				return fmt.Errorf("round %d: counter %d is %d, expected %d", round, i, n, goroutines)
			}
		}
		log.Printf("round %d: %d goroutines over %d bits in %s", round, goroutines, nbits, time.Since(start))
	}
	return nil
}
