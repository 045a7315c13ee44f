// Package download turns resolved tracks into files on disk.
//
// # Batches
//
// Batch.Run is the heart of the package. For each track, in order, it
// renders the target path, applies the skip policy and otherwise hands the
// track to a Downloader, retrying with an exponential cooldown:
//
//	batch := download.NewBatch(downloader, download.BatchConfig{
//	    Concurrency:   4,
//	    MaxRetries:    3,
//	    RetryCooldown: 200 * time.Millisecond,
//	    RetryExponent: 4,
//	}, logger)
//	result := batch.Run(ctx, tracks, download.Request{
//	    OutputRoot: "/music",
//	    Pattern:    model.DefaultPathPattern,
//	    Options:    model.DefaultDownloadOptions(),
//	}, reporter)
//	fmt.Println(result.Summary())
//
// A failing track is recorded in the result and the batch moves on. Exactly
// one progress event is emitted per track, in input order, even when
// several tracks download at once.
//
// # Covers
//
// Each batch owns a CoverCache, so tracks of one album fetch their cover
// once, including when they are downloaded concurrently.
//
// # Manager
//
// Manager wires the pieces together for the front ends: it owns the
// session, resolves URLs and search selections, runs the batch, writes the
// optional playlist and saves the settings afterwards.
package download
