// Package checksum fingerprints source files as they are loaded.
//
// Reader wraps the file stream handed to COPY so the SHA-256 and byte count
// are computed in the same pass as the load, without buffering the file.
// The report records both so an operator can tell which export a table was
// populated from.
//
// # Example Usage
//
//	cr := checksum.NewReader(file)
//	tag, err := tx.CopyFrom(ctx, cr, stmt)
//	fmt.Println(cr.Sum(), cr.Bytes())
//
// Stream computes the same digest without loading, so `validate` can print
// the fingerprint a later load will report.
package checksum
