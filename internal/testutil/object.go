package testutil

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"encoding/binary"
	"testing"
)

// Section is a named section of a test object file.
type Section struct {
	Segment string // Mach-O only
	Name    string
	Data    []byte
}

// MachOSlice describes one architecture of a test Mach-O file.
type MachOSlice struct {
	Cpu      macho.Cpu
	SubCpu   uint32
	Sections []Section
}

const (
	machoHeaderSize64  = 32
	machoSegmentSize64 = 72
	machoSectionSize64 = 80
)

// BuildMachO creates a 64-bit little-endian MH_OBJECT with a single segment
// command holding sections.
func BuildMachO(tb testing.TB, slice MachOSlice) []byte {
	tb.Helper()

	nsect := uint32(len(slice.Sections)) //nolint:gosec // test fixture
	cmdsz := uint32(machoSegmentSize64) + nsect*machoSectionSize64
	dataStart := uint64(machoHeaderSize64) + uint64(cmdsz)

	var data bytes.Buffer
	sects := make([]macho.Section64, 0, nsect)
	for _, s := range slice.Sections {
		var sec macho.Section64
		copy(sec.Name[:], s.Name)
		copy(sec.Seg[:], s.Segment)
		sec.Size = uint64(len(s.Data))
		sec.Offset = uint32(dataStart) + uint32(data.Len()) //nolint:gosec // test fixture
		sects = append(sects, sec)
		data.Write(s.Data)
	}

	var buf bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			tb.Fatalf("encode mach-o: %v", err)
		}
	}
	write(macho.FileHeader{
		Magic:  macho.Magic64,
		Cpu:    slice.Cpu,
		SubCpu: slice.SubCpu,
		Type:   macho.TypeObj,
		Ncmd:   1,
		Cmdsz:  cmdsz,
	})
	write(uint32(0)) // reserved
	var seg macho.Segment64
	seg.Cmd = macho.LoadCmdSegment64
	seg.Len = cmdsz
	seg.Memsz = uint64(data.Len())
	seg.Offset = dataStart
	seg.Filesz = uint64(data.Len())
	seg.Nsect = nsect
	write(seg)
	for _, sec := range sects {
		write(sec)
	}
	buf.Write(data.Bytes())
	return buf.Bytes()
}

// BuildFatMachO wraps thin Mach-O slices in a universal binary.
func BuildFatMachO(tb testing.TB, slices ...MachOSlice) []byte {
	tb.Helper()

	const fatHeaderSize, fatArchSize, align = 8, 20, 16
	thin := make([][]byte, len(slices))
	for i, s := range slices {
		thin[i] = BuildMachO(tb, s)
	}

	offset := uint32(fatHeaderSize + fatArchSize*len(slices))
	var hdr, body bytes.Buffer
	write := func(w *bytes.Buffer, v any) {
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			tb.Fatalf("encode fat header: %v", err)
		}
	}
	write(&hdr, uint32(macho.MagicFat))
	write(&hdr, uint32(len(slices))) //nolint:gosec // test fixture
	for i, s := range slices {
		for (offset+uint32(body.Len()))%align != 0 { //nolint:gosec // test fixture
			body.WriteByte(0)
		}
		write(&hdr, macho.FatArchHeader{
			Cpu:    s.Cpu,
			SubCpu: s.SubCpu,
			Offset: offset + uint32(body.Len()), //nolint:gosec // test fixture
			Size:   uint32(len(thin[i])),        //nolint:gosec // test fixture
			Align:  4,
		})
		body.Write(thin[i])
	}
	return append(hdr.Bytes(), body.Bytes()...)
}

// BuildELF creates a 64-bit little-endian relocatable ELF file holding sections.
func BuildELF(tb testing.TB, machine elf.Machine, sections []Section) []byte {
	tb.Helper()

	const ehdrSize, shdrSize = 64, 64

	// Section name table: "" then each section name, then ".shstrtab".
	var strtab bytes.Buffer
	strtab.WriteByte(0)
	nameOff := make([]uint32, len(sections)+1)
	for i, s := range sections {
		nameOff[i] = uint32(strtab.Len()) //nolint:gosec // test fixture
		strtab.WriteString(s.Name)
		strtab.WriteByte(0)
	}
	nameOff[len(sections)] = uint32(strtab.Len()) //nolint:gosec // test fixture
	strtab.WriteString(".shstrtab")
	strtab.WriteByte(0)

	var data bytes.Buffer
	headers := []elf.Section64{{}}
	for i, s := range sections {
		headers = append(headers, elf.Section64{
			Name:      nameOff[i],
			Type:      uint32(elf.SHT_PROGBITS),
			Off:       uint64(ehdrSize + data.Len()),
			Size:      uint64(len(s.Data)),
			Addralign: 1,
		})
		data.Write(s.Data)
	}
	headers = append(headers, elf.Section64{
		Name:      nameOff[len(sections)],
		Type:      uint32(elf.SHT_STRTAB),
		Off:       uint64(ehdrSize + data.Len()),
		Size:      uint64(strtab.Len()),
		Addralign: 1,
	})
	data.Write(strtab.Bytes())
	for data.Len()%8 != 0 {
		data.WriteByte(0)
	}

	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var buf bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			tb.Fatalf("encode elf: %v", err)
		}
	}
	write(elf.Header64{
		Ident:     ident,
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint64(ehdrSize + data.Len()),
		Ehsize:    ehdrSize,
		Shentsize: shdrSize,
		Shnum:     uint16(len(headers)),     //nolint:gosec // test fixture
		Shstrndx:  uint16(len(headers) - 1), //nolint:gosec // test fixture
	})
	buf.Write(data.Bytes())
	for _, h := range headers {
		write(h)
	}
	return buf.Bytes()
}
