package writer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"time"

	"github.com/pkeir/path-tracer/asset"
	"github.com/pkeir/path-tracer/log"
	"github.com/pkeir/path-tracer/scene"
)

const (
	dataFile = "scene.bin"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef("writing compressed scene to %s", w.sceneFile)
	start := time.Now()

	var buf bytes.Buffer
	if err := Encode(&buf, sc); err != nil {
		return err
	}

	if err := asset.WriteResource(context.Background(), w.sceneFile, buf.Bytes(), "application/zip"); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene (%d bytes) in %d ms", buf.Len(), time.Since(start).Nanoseconds()/1000000)
	return nil
}

// Encode a scene as a zip archive containing a single gob entry.
func Encode(out io.Writer, sc *scene.Scene) error {
	zw := zip.NewWriter(out)

	cw, err := zw.Create(dataFile)
	if err != nil {
		zw.Close()
		return err
	}
	encoder := gob.NewEncoder(cw)
	if err = encoder.Encode(sc); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
