// Command bake renders a layer stack to export textures without the UI.
// Each input image becomes one layer at default placement; the composite
// is written once per requested texture size.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"modelpaint/internal/compositor"
	"modelpaint/internal/raster"
)

func main() {
	outDir := flag.String("out", ".", "output directory")
	sizes := flag.String("sizes", "1024", "comma-separated texture sizes in pixels")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: bake [-out dir] [-sizes 512,2048] image...")
		os.Exit(2)
	}

	stack := compositor.NewStack()
	for _, path := range flag.Args() {
		src, err := raster.Load(path)
		if err != nil {
			log.Fatalf("load %s: %v", path, err)
		}
		stack.AddLayer(src.Image, compositor.Placement{})
		log.Infof("layer %s added", src.Name())
	}

	for _, field := range strings.Split(*sizes, ",") {
		size, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || size <= 0 {
			log.Fatalf("invalid size %q", field)
		}

		surface := compositor.NewSurface(size, size, false)
		stack.Render(surface)

		out := filepath.Join(*outDir, fmt.Sprintf("texture_%d.png", size))
		if err := writePNG(out, surface); err != nil {
			log.Fatalf("write %s: %v", out, err)
		}
		log.Infof("wrote %s", out)
	}
}

func writePNG(path string, surface *compositor.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, surface.RGBA)
}
