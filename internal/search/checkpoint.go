package search

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/hupe1980/nodefinder/blobstore"
	"github.com/hupe1980/nodefinder/persistence"
)

func (c *Controller) checkpointOptions() persistence.Options {
	return persistence.Options{
		Codec:       c.cfg.Codec,
		Compression: c.cfg.Compression,
		RunID:       c.cfg.RunID,
	}
}

// save writes a checkpoint if the state changed since the last one. A
// failure to write the save file is fatal. Mirroring to the blob store is
// best effort unless the store is the only checkpoint target.
func (c *Controller) save(ctx context.Context) error {
	if !c.needsSaving || (c.cfg.SaveFile == "" && c.cfg.Store == nil) {
		return nil
	}
	doc := c.state.Document()

	if c.cfg.SaveFile != "" {
		start := time.Now()
		n, err := persistence.Save(c.cfg.FS, c.cfg.SaveFile, persistence.KindState, doc, c.checkpointOptions())
		c.hooks.OnCheckpoint(ctx, CheckpointEvent{
			Path:     c.cfg.SaveFile,
			Bytes:    n,
			Results:  len(doc.MinimizationResults),
			Duration: time.Since(start),
			Err:      err,
		})
		if err != nil {
			return &CheckpointError{Path: c.cfg.SaveFile, Err: err}
		}
	}

	if c.cfg.Store != nil {
		if err := c.mirror(ctx, doc); err != nil && c.cfg.SaveFile == "" {
			return &CheckpointError{Path: c.cfg.storeKey(), Err: err}
		}
	}

	c.needsSaving = false
	return nil
}

func (c *Controller) mirror(ctx context.Context, doc *persistence.Document) error {
	start := time.Now()
	key := c.cfg.storeKey()

	var buf bytes.Buffer
	n, err := persistence.Encode(&buf, persistence.KindState, doc, c.checkpointOptions())
	if err == nil {
		err = c.cfg.Store.Put(ctx, key, buf.Bytes())
	}
	c.hooks.OnCheckpoint(ctx, CheckpointEvent{
		Path:     key,
		Mirror:   true,
		Bytes:    n,
		Results:  len(doc.MinimizationResults),
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

// load reads the checkpoint to resume from. The save file takes precedence;
// the blob store is consulted when the file does not exist.
func (c *Controller) load(ctx context.Context) (*persistence.Document, error) {
	start := time.Now()

	if c.cfg.SaveFile != "" {
		_, doc, err := persistence.Load(c.cfg.FS, c.cfg.SaveFile)
		switch {
		case err == nil:
			c.hooks.OnLoad(ctx, CheckpointEvent{
				Path:     c.cfg.SaveFile,
				Results:  len(doc.MinimizationResults),
				Duration: time.Since(start),
			})
			return doc, nil
		case !errors.Is(err, fs.ErrNotExist) || c.cfg.Store == nil:
			c.hooks.OnLoad(ctx, CheckpointEvent{Path: c.cfg.SaveFile, Duration: time.Since(start), Err: err})
			return nil, &CheckpointError{Path: c.cfg.SaveFile, Err: err}
		}
	}

	key := c.cfg.storeKey()
	data, err := blobstore.ReadAll(ctx, c.cfg.Store, key)
	var doc *persistence.Document
	if err == nil {
		_, doc, err = persistence.Decode(bytes.NewReader(data))
	}
	c.hooks.OnLoad(ctx, CheckpointEvent{
		Path:     key,
		Mirror:   true,
		Bytes:    int64(len(data)),
		Results:  resultCount(doc),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, &CheckpointError{Path: key, Err: err}
	}
	return doc, nil
}

func resultCount(doc *persistence.Document) int {
	if doc == nil {
		return 0
	}
	return len(doc.MinimizationResults)
}
