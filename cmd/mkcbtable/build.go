package main

import (
	"fmt"
	"io"
	"os"

	"gopherboot/firmware/cbtable"
	"gopherboot/firmware/config"
	"gopherboot/firmware/hightable"
	"gopherboot/firmware/kfmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/pkg/errors"
)

// buildCommand writes the table described by a platform file.
type buildCommand struct {
	config  string
	out     string
	debug   bool
	noArena bool
}

func addBuildCommand(app *kingpin.Application) {
	cmd := &buildCommand{}
	build := app.Command("build", "Build a coreboot table image from a platform description.").Action(cmd.run)
	build.Flag("config", "Platform description (YAML).").Short('c').Required().ExistingFileVar(&cmd.config)
	build.Flag("out", "Output file for the table image.").Short('o').Required().StringVar(&cmd.out)
	build.Flag("debug", "Log every memory range.").BoolVar(&cmd.debug)
	build.Flag("no-arena-region", "Do not report the high table region as a configuration table.").BoolVar(&cmd.noArena)
}

func (cmd *buildCommand) run(_ *kingpin.ParseContext) error {
	p, err := config.Load(cmd.config)
	if err != nil {
		exitWithErr(err)
	}

	var console kfmt.Console
	logger := console.NewLogger("[fw] ", cmd.debug)

	img, err := buildTable(p, !cmd.noArena, logger)

	// Flush the buffered firmware log before reporting the outcome.
	if sinkErr := console.SetOutputSink(os.Stderr); sinkErr != nil && err == nil {
		err = sinkErr
	}
	if err != nil {
		exitWithErr(err)
	}

	if err := os.WriteFile(cmd.out, img.data, 0o644); err != nil {
		exitWithErr(errors.Wrap(err, "writing table image"))
	}

	img.print(os.Stdout)
	return nil
}

// tableImage is a table produced from a platform description.
type tableImage struct {
	summary *cbtable.Summary
	arena   *hightable.Arena
	data    []byte
}

// buildTable runs the firmware handoff sequence against the platform
// description: reserve the high table region, allocate space for the table
// and write it.
func buildTable(p *config.Platform, reportArena bool, logger log.Logger) (*tableImage, error) {
	order, err := p.Order()
	if err != nil {
		return nil, err
	}

	m := p.NewMemory()
	arena, _, ferr := hightable.Reserve(m, p.StackTop, p.HighTableSize, p.PrevSleepState, logger)
	if ferr != nil {
		return nil, errors.Wrap(ferr, "reserving high table")
	}

	areas := append([]cbtable.MemoryArea{}, p.ConfigTables...)
	if reportArena {
		areas = append(areas, cbtable.MemoryArea{Start: uint64(arena.Base()), Size: uint64(arena.Size())})
	}

	b := &cbtable.Builder{
		Memory:    m,
		MemoryMap: p.E820,
		VideoMode: p.VideoModeProvider(),
		ByteOrder: order,
		Logger:    logger,
	}

	size, ferr := b.TableSize(areas)
	if ferr != nil {
		return nil, errors.Wrap(ferr, "sizing coreboot table")
	}

	addr, ferr := arena.Alloc(size)
	if ferr != nil {
		return nil, errors.Wrapf(ferr, "allocating %s for coreboot table", size)
	}

	summary, ferr := b.Write(addr, areas)
	if ferr != nil {
		return nil, errors.Wrap(ferr, "writing coreboot table")
	}

	data, ferr := m.Slice(addr, summary.Size())
	if ferr != nil {
		return nil, errors.Wrap(ferr, "reading back coreboot table")
	}

	return &tableImage{summary: summary, arena: arena, data: append([]byte{}, data...)}, nil
}

func (img *tableImage) print(w io.Writer) {
	bold := color.New(color.Bold)
	hdr := img.summary.Header

	bold.Fprintln(w, "Coreboot table:")
	fmt.Fprintf(w, "\taddress: %s, size: %s, entries: %d\n", img.summary.Addr, humanize.IBytes(uint64(img.summary.Size())), hdr.TableEntries)
	fmt.Fprintf(w, "\theader checksum: 0x%04x, table checksum: 0x%04x\n", hdr.HeaderChecksum, hdr.TableChecksum)

	bold.Fprintln(w, "High table region:")
	fmt.Fprintf(w, "\t[%s - %s], used: %s, free: %s\n", img.arena.Base(), img.arena.Limit(), img.arena.Used(), img.arena.Free())
}
