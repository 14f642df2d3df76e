package reader

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkeir/path-tracer/asset"
	"github.com/pkeir/path-tracer/asset/texture"
	"github.com/pkeir/path-tracer/scene"
	"github.com/pkeir/path-tracer/scene/writer"
	"github.com/pkeir/path-tracer/types"
)

func testScene(t *testing.T) *scene.Scene {
	sc := scene.NewScene()
	img := sc.AddImage(texture.Image{
		Name:   "pixel",
		Width:  1,
		Height: 1,
		Pixels: []types.Vec3{types.XYZ(0.25, 0.5, 0.75)},
	})
	sc.AddImage(texture.Image{Name: "missing"})

	prims := []scene.Primitive{
		scene.NewSphere(types.XYZ(0, -1000, 0), 1000, scene.NewLambertian(scene.NewChecker(types.XYZ(0.2, 0.3, 0.1), types.XYZ(0.9, 0.9, 0.9)))),
		scene.NewSphere(types.XYZ(0, 1, 0), 1, scene.NewMetal(scene.NewSolid(types.XYZ(0.7, 0.6, 0.5)), 0.2)),
		scene.NewBox(types.XYZ(-1, 0, -1), types.XYZ(0, 1, 0), scene.NewLambertian(scene.NewImageTexture(img, scene.BilinearFilter))),
	}
	for _, prim := range prims {
		if err := sc.AddPrimitive(prim); err != nil {
			t.Fatal(err)
		}
	}

	cam := scene.NewCamera(20)
	cam.LookFrom = types.XYZ(13, 2, 3)
	cam.Aperture = 0.1
	cam.FocusDist = 10
	cam.SetupProjection(16.0 / 9.0)
	sc.SetCamera(cam)
	return sc
}

func TestZipRoundTrip(t *testing.T) {
	sc := testScene(t)
	sceneFile := filepath.Join(t.TempDir(), "scene.zip")
	if err := writer.WriteScene(sc, sceneFile); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadScene(sceneFile)
	if err != nil {
		t.Fatal(err)
	}

	if len(loaded.Primitives) != len(sc.Primitives) {
		t.Fatalf("expected %d primitives; got %d", len(sc.Primitives), len(loaded.Primitives))
	}
	for index := range sc.Primitives {
		if loaded.Primitives[index] != sc.Primitives[index] {
			t.Fatalf("[primitive %d] expected %+v; got %+v", index, sc.Primitives[index], loaded.Primitives[index])
		}
	}

	if len(loaded.Images) != 2 {
		t.Fatalf("expected 2 images; got %d", len(loaded.Images))
	}
	if !loaded.Images[0].Valid() || loaded.Images[0].Pixels[0] != types.XYZ(0.25, 0.5, 0.75) {
		t.Fatalf("expected embedded texel data to survive; got %+v", loaded.Images[0])
	}
	if loaded.Images[1].Valid() || loaded.Images[1].Name != "missing" {
		t.Fatalf("expected placeholder image to survive; got %+v", loaded.Images[1])
	}

	if loaded.Camera == nil {
		t.Fatal("expected camera to be loaded")
	}
	if loaded.Camera.Viewport != sc.Camera.Viewport || loaded.Camera.FOV != 20 {
		t.Fatalf("expected camera %+v; got %+v", sc.Camera, loaded.Camera)
	}
}

func TestZipUnknownEntriesAreSkipped(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("README.txt")
	w.Write([]byte("hello"))
	zw.Close()

	_, err := newZipSceneReader().Read(asset.NewResourceFromStream("extra.zip", &buf))
	if err == nil || !strings.Contains(err.Error(), "missing scene.bin") {
		t.Fatalf("expected a missing scene data error; got %v", err)
	}

	buf.Reset()
	if err = writer.Encode(&buf, testScene(t)); err != nil {
		t.Fatal(err)
	}
	sc, err := newZipSceneReader().Read(asset.NewResourceFromStream("scene.zip", &buf))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Primitives) != 3 {
		t.Fatalf("expected 3 primitives; got %d", len(sc.Primitives))
	}
}

func TestUnsupportedSceneFormat(t *testing.T) {
	expError := "readScene: unsupported file format"
	_, err := ReadScene("scene.obj")
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}

	badFile := filepath.Join(t.TempDir(), "bad.zip")
	if err = os.WriteFile(badFile, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err = ReadScene(badFile); err == nil {
		t.Fatal("expected an error reading a corrupt zip file")
	}
}
