// Package main provides the entry point for the Model Paint editor.
package main

import (
	"fmt"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gonum.org/v1/gonum/spatial/r3"

	"modelpaint/internal/app"
	"modelpaint/internal/boot"
	"modelpaint/internal/raster"
	"modelpaint/internal/scene"
	"modelpaint/internal/selection"
	"modelpaint/internal/version"
	"modelpaint/ui/mainwindow"
	"modelpaint/ui/prefs"
)

const depTimeout = 5 * time.Second

// sceneOverlays hosts selection visuals directly under the scene root.
// A production renderer supplies its own overlay layer.
type sceneOverlays struct {
	root *scene.Object
}

func (s sceneOverlays) AddOverlay(o *scene.Object)    { s.root.AddChild(o) }
func (s sceneOverlays) RemoveOverlay(o *scene.Object) { o.RemoveFromParent() }

func main() {
	log.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.Infof("starting modelpaint v%s (%s)", version.Version, version.GitCommit)

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.EditorTheme{})
	appPrefs := prefs.Load()

	registry := boot.NewRegistry()
	initializer := boot.NewInitializer(registry, 0)

	// The renderer collaborator publishes the scene root and the transform
	// tool once its context is up. This build stands them in directly.
	registry.Publish("scene-root", sampleScene())
	registry.Publish("transform-tool", selection.NewGizmo())
	registry.Publish("orbit-control", selection.NewOrbit())

	var state *app.State
	var win *mainwindow.MainWindow

	initializer.AddStage(boot.Stage{
		Name: "selection-engine",
		Run: func(reg *boot.Registry) error {
			v, err := initializer.Resolve("scene-root", depTimeout)
			if err != nil {
				return err
			}
			root := v.(*scene.Object)

			engine := selection.NewEngine(scene.AABBRaycaster{}, sceneOverlays{root: root})
			state = app.NewState(engine, root)
			state.RefreshSelectables()

			reg.Publish("editor-state", state)
			return nil
		},
	})

	initializer.AddStage(boot.Stage{
		Name: "transform-tool",
		Run: func(reg *boot.Registry) error {
			deps, err := initializer.WaitForAll(map[string]func() interface{}{
				"transform-tool": lookup(reg, "transform-tool"),
				"orbit-control":  lookup(reg, "orbit-control"),
			}, depTimeout)
			if err != nil {
				return err
			}
			tool := deps["transform-tool"].(selection.TransformTool)
			orbit := deps["orbit-control"].(selection.OrbitControl)
			state.Selection.BindTransformTool(tool, orbit)
			return nil
		},
	})

	initializer.AddStage(boot.Stage{
		Name: "ui-listeners",
		Run: func(reg *boot.Registry) error {
			win = mainwindow.New(fyneApp, state, appPrefs)
			return nil
		},
	})

	initializer.AddStage(boot.Stage{
		Name:     "content-library",
		Optional: true,
		Run: func(reg *boot.Registry) error {
			dir := appPrefs.String(prefs.KeyLibraryDir, "")
			if dir == "" {
				return fmt.Errorf("no library directory configured")
			}
			sources, err := raster.LoadDir(dir)
			if err != nil {
				return err
			}
			state.SetLibrary(sources)
			log.Infof("loaded %d library images from %s", len(sources), dir)
			return nil
		},
	})

	if err := initializer.Initialize(); err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	win.Show()
	fyneApp.Run()
}

// lookup adapts a registry entry to a WaitFor poll function.
func lookup(reg *boot.Registry, name string) func() interface{} {
	return func() interface{} {
		v, ok := reg.Lookup(name)
		if !ok {
			return nil
		}
		return v
	}
}

// sampleScene builds the placeholder model the external loader would
// normally insert: selectable mesh groups, a light, and a grid helper.
func sampleScene() *scene.Object {
	selectable := true

	root := scene.NewObject("scene", scene.KindGroup)
	root.Selectable = &selectable

	for i, name := range []string{"body", "lid", "handle"} {
		group := scene.NewObject(name, scene.KindGroup)
		mesh := scene.NewObject(name+"-mesh", scene.KindMesh)
		fi := float64(i)
		mesh.Bounds = scene.NewAABB(
			r3.Vec{X: fi*2 - 1, Y: -1, Z: -1},
			r3.Vec{X: fi*2 + 1, Y: 1, Z: 1},
		)
		group.AddChild(mesh)
		root.AddChild(group)
	}

	root.AddChild(scene.NewObject("key-light", scene.KindLight))
	root.AddChild(scene.NewObject("grid", scene.KindHelper))

	return root
}
