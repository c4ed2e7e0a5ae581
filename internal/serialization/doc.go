// Package serialization saves and loads state dictionaries in the
// SafeTensors format:
//
//	Format Structure:
//	  [8 bytes: header size N (uint64 LE)]
//	  [N bytes: JSON header]
//	  [tensor data: raw little-endian bytes]
//
// The JSON header maps each tensor name to its dtype ("F32" or "F64"),
// shape and [start, end) byte offsets relative to the data section, plus an
// optional "__metadata__" object of string pairs. Tensors are written in
// alphabetical order. A SHA-256 of the data section is stored in the
// metadata and verified on read.
//
// Headers are validated before any tensor data is read: names must not
// contain path separators, offsets must lie inside the data section and
// must not overlap, and sizes must match shape times dtype width.
//
// Example usage:
//
//	sd := model.StateDict()
//	if err := serialization.WriteSafeTensors("model.safetensors", sd, meta); err != nil {
//	    return err
//	}
//
//	sd, meta, err := serialization.ReadSafeTensors("model.safetensors", tensor.CPU)
//	if err != nil {
//	    return err
//	}
//	err = model.LoadStateDict(sd)
package serialization
