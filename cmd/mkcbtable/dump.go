package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"gopherboot/firmware/cbtable"
	"gopherboot/firmware/mem"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// dumpCommand prints the contents of table images.
type dumpCommand struct {
	files     []string
	byteOrder string
}

func addDumpCommand(app *kingpin.Application) {
	cmd := &dumpCommand{}
	dump := app.Command("dump", "Print and verify coreboot table images.").Action(cmd.run)
	dump.Flag("byte-order", "Byte order of the images.").Default("native").EnumVar(&cmd.byteOrder, "native", "little", "big")
	dump.Arg("file", "The table images to print.").Required().ExistingFilesVar(&cmd.files)
}

func (cmd *dumpCommand) run(_ *kingpin.ParseContext) error {
	order := byteOrder(cmd.byteOrder)
	for _, f := range cmd.files {
		if err := dumpFile(os.Stdout, f, order); err != nil {
			exitWithErr(err)
		}
	}
	return nil
}

func byteOrder(name string) binary.ByteOrder {
	switch name {
	case "little":
		return binary.LittleEndian
	case "big":
		return binary.BigEndian
	default:
		return binary.NativeEndian
	}
}

func dumpFile(w io.Writer, name string, order binary.ByteOrder) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "reading table image")
	}

	tbl, ferr := cbtable.Parse(data, order)
	if ferr != nil {
		return errors.Wrapf(ferr, "parsing %s", name)
	}

	printTable(w, name, tbl, cbtable.Verify(data, order) == nil)
	return nil
}

func printTable(w io.Writer, name string, tbl *cbtable.Table, valid bool) {
	var (
		bold = color.New(color.Bold)
		bad  = color.New(color.FgRed)
		hdr  = tbl.Header
	)

	bold.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "\theader: %d bytes, table: %d bytes, entries: %d\n", hdr.HeaderBytes, hdr.TableBytes, hdr.TableEntries)
	fmt.Fprintf(w, "\tchecksums: header 0x%04x, table 0x%04x ", hdr.HeaderChecksum, hdr.TableChecksum)
	if valid {
		fmt.Fprintln(w, "[ok]")
	} else {
		bad.Fprintln(w, "[mismatch]")
	}

	for i, rec := range tbl.Records {
		bold.Fprintf(w, "record %d: %s (%d bytes)\n", i, rec.Tag, rec.Size)

		switch {
		case rec.Memory != nil:
			var total uint64
			for _, r := range rec.Memory {
				fmt.Fprintf(w, "\t[%#12x - %#12x], size: %10s, type: %s\n", r.Start, r.Start+r.Size, humanize.IBytes(r.Size), r.Type)
				if r.Type == cbtable.MemRAM {
					total += r.Size
				}
			}
			fmt.Fprintf(w, "\tusable memory: %s\n", humanize.IBytes(total))
		case rec.Framebuffer != nil:
			fb := rec.Framebuffer
			fmt.Fprintf(w, "\t%dx%dx%d at %s, %d bytes per line\n", fb.XResolution, fb.YResolution, fb.BitsPerPixel, mem.PhysAddr(fb.PhysicalAddress), fb.BytesPerLine)
			fmt.Fprintf(w, "\tred %d:%d, green %d:%d, blue %d:%d, reserved %d:%d\n",
				fb.RedMaskPos, fb.RedMaskSize,
				fb.GreenMaskPos, fb.GreenMaskSize,
				fb.BlueMaskPos, fb.BlueMaskSize,
				fb.ReservedMaskPos, fb.ReservedMaskSize,
			)
		default:
			fmt.Fprintf(w, "\t% x\n", rec.Raw)
		}
	}
}
