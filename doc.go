// Package ebc decodes embedded bitcode containers.
//
// Compilers that embed bitcode place, per architecture, either a single
// bitcode payload or a XAR archive (the "bitcode bundle") into the object
// file. The archive holds one entry per compiled unit plus a table of
// contents recording each entry's type and the exact Clang or Swift command
// line that produced it.
//
// A [Container] wraps one such blob. [FromBytes] selects the variant from
// the blob's signature: an [*Archive] for XAR bundles, a [*Bitcode] for
// everything else.
//
//	c, err := ebc.FromFile("slice.xar")
//	if err != nil {
//	    return err
//	}
//	for _, f := range c.RawEmbeddedFiles() {
//	    fmt.Println(f.FileType(), f.ClangCommands())
//	}
//
// [Retrieve] finds the containers inside a Mach-O (thin or fat) or ELF
// object file.
//
// # Temporary files
//
// The archive codec operates on files, so archives are written to scratch
// files in the temporary directory (see [WithTempDir]) for the duration of
// each call and removed before it returns. [Container.EmbeddedFiles] hands
// extracted payloads back as fresh temporary files owned by the caller; use
// [EmbeddedFile.Remove] when done, or [Container.RawEmbeddedFiles] to keep
// payloads in memory.
package ebc
