// Package viewer animates replays in a raylib window.
//
// Controls:
//
//	Space        play / pause
//	Left, Right  step one frame
//	Up, Down     previous / next generation
//	Mouse wheel  zoom
//	F            toggle following the car
package viewer

import (
	"errors"
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slalom/camera"
	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/scene"
	"github.com/pthm-cable/slalom/telemetry"
)

// ErrNoReplays is returned when there is nothing to animate.
var ErrNoReplays = errors.New("no replays to animate")

const (
	margin      = 10
	panelHeight = 110
	trackMinY   = -1
	trackMaxY   = 1
)

// player holds the playback state of the window.
type player struct {
	replays []telemetry.Replay
	scene   *scene.Scene
	cam     *camera.Camera

	index   int // into replays
	playing bool
	follow  bool
}

// Run opens a window and animates replays until it is closed. Every replay
// must come from the same run, since the obstacles are built once.
func Run(replays []telemetry.Replay, cfg config.ViewerConfig) error {
	if len(replays) == 0 {
		return ErrNoReplays
	}

	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), "Slalom replay")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.TargetFPS))

	sc := replays[0].Scene
	trackW := float32(cfg.Width - 2*margin)
	trackH := float32(cfg.Height - panelHeight - 2*margin)

	p := &player{
		replays: replays,
		scene:   scene.New(sc),
		cam: camera.New(margin, margin, trackW, trackH,
			float32(-sc.AxisOffset), float32(float64(len(sc.Obstacles)-1)+sc.AxisOffset),
			trackMinY, trackMaxY),
		playing: true,
	}
	p.selectReplay(0)

	for !rl.WindowShouldClose() {
		p.handleInput()

		if p.playing {
			p.advance()
		}
		if p.follow {
			p.cam.Follow(float32(p.scene.CarX()))
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		p.drawTrack()
		p.drawPanel(float32(cfg.Height - panelHeight))
		rl.EndDrawing()
	}
	return nil
}

// selectReplay switches to replays[i] and rewinds.
func (p *player) selectReplay(i int) {
	p.index = min(max(i, 0), len(p.replays)-1)
	p.scene.SetTrajectory(p.replays[p.index].Trajectory)
}

// advance steps one frame, stopping at the end of the trajectory.
func (p *player) advance() {
	next := p.scene.Frame() + 1
	if next >= p.scene.Frames() {
		p.playing = false
		return
	}
	p.scene.SetFrame(next)
}

func (p *player) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		if !p.playing && p.scene.Frame() >= p.scene.Frames()-1 {
			p.scene.SetFrame(0)
		}
		p.playing = !p.playing
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		p.playing = false
		p.scene.SetFrame(min(p.scene.Frame()+1, p.scene.Frames()-1))
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		p.playing = false
		p.scene.SetFrame(p.scene.Frame() - 1)
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		p.selectReplay(p.index - 1)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		p.selectReplay(p.index + 1)
	}
	if rl.IsKeyPressed(rl.KeyF) {
		p.follow = !p.follow
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		p.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		p.cam.Pan(-delta.X, -delta.Y)
	}
}

func (p *player) drawTrack() {
	cam := p.cam
	vx, vy := int32(cam.ViewportX), int32(cam.ViewportY)
	vw, vh := int32(cam.ViewportW), int32(cam.ViewportH)

	rl.BeginScissorMode(vx, vy, vw, vh)

	// Axis and goal line
	x0, y0 := cam.WorldToScreen(cam.MinX, 0)
	x1, _ := cam.WorldToScreen(cam.MaxX, 0)
	rl.DrawLine(int32(x0), int32(y0), int32(x1), int32(y0), rl.LightGray)

	sc := p.replays[p.index].Scene
	gx, gyTop := cam.WorldToScreen(float32(sc.MaxDistance), trackMaxY)
	_, gyBottom := cam.WorldToScreen(float32(sc.MaxDistance), trackMinY)
	rl.DrawLine(int32(gx), int32(gyTop), int32(gx), int32(gyBottom), rl.Green)

	for _, r := range p.scene.Rects() {
		if !cam.IsVisible(r.X, r.Y, r.Width, r.Height) {
			continue
		}
		// Screen rectangles are anchored at their upper-left corner
		sx, sy := cam.WorldToScreen(r.X, r.Y+r.Height)
		w, h := cam.Size(r.Width, r.Height)
		rl.DrawRectangleRec(rl.Rectangle{X: sx, Y: sy, Width: w, Height: h}, r.Color)
		rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: w, Height: h}, 1, rl.DarkGray)
	}

	rl.EndScissorMode()
	rl.DrawRectangleLines(vx, vy, vw, vh, rl.DarkGray)
}

func (p *player) drawPanel(top float32) {
	tr := p.replays[p.index].Trajectory

	status := fmt.Sprintf("Generation %d   t = %d   x = %.3f   %s   fitness %.4f",
		tr.Generation, p.scene.Frame(), p.scene.CarX(), tr.Outcome, tr.Fitness)
	rl.DrawText(status, margin, int32(top)+margin, 20, rl.DarkGray)

	sliderW := float32(p.cam.ViewportW - 260)
	y := top + 40

	if len(p.replays) > 1 {
		idx := gui.SliderBar(
			rl.Rectangle{X: margin + 90, Y: y, Width: sliderW, Height: 20},
			"Generation", fmt.Sprintf("%d", tr.Generation),
			float32(p.index), 0, float32(len(p.replays)-1),
		)
		if int(idx+0.5) != p.index {
			p.selectReplay(int(idx + 0.5))
		}
	}
	y += 30

	if frames := p.scene.Frames(); frames > 1 {
		frame := gui.SliderBar(
			rl.Rectangle{X: margin + 90, Y: y, Width: sliderW, Height: 20},
			"Frame", fmt.Sprintf("%d/%d", p.scene.Frame(), frames-1),
			float32(p.scene.Frame()), 0, float32(frames-1),
		)
		if int(frame+0.5) != p.scene.Frame() {
			p.playing = false
			p.scene.SetFrame(int(frame + 0.5))
		}
	}

	bx := margin + 90 + sliderW + 60
	label := "Play"
	if p.playing {
		label = "Pause"
	}
	if gui.Button(rl.Rectangle{X: bx, Y: top + 40, Width: 90, Height: 20}, label) {
		if !p.playing && p.scene.Frame() >= p.scene.Frames()-1 {
			p.scene.SetFrame(0)
		}
		p.playing = !p.playing
	}
	if gui.Button(rl.Rectangle{X: bx, Y: top + 70, Width: 90, Height: 20}, "Reset view") {
		p.follow = false
		p.cam.Reset()
	}
}
