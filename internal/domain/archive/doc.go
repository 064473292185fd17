// Package archive opens project containers and classifies their entries.
//
// Supported containers are zip (.aia, .aix) and tar, optionally wrapped in
// gzip or zstd. The format is sniffed from content, never from the name.
//
//	opener := archive.NewOpener(client, 64<<20, logger)
//	a, err := opener.Open(ctx, archive.File("HelloWorld.aia"))
//	if err != nil {
//	    return err // errs.ErrIO
//	}
//	defer a.Close()
//	c := archive.Classify(a.Entries())
package archive
