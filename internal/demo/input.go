package demo

import (
	"math"

	"implot3d/pkg/plot3d"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// trackedKeys are the keys the demo reacts to
var trackedKeys = []glfw.Key{
	glfw.KeyEscape, glfw.KeyR, glfw.KeyM, glfw.KeyEqual, glfw.KeyMinus,
}

// InputHandler tracks keyboard and mouse state between frames
type InputHandler struct {
	window            *glfw.Window
	currentKeys       map[glfw.Key]bool
	previousKeys      map[glfw.Key]bool
	currentMousePos   [2]float64
	previousMousePos  [2]float64
	currentMouseBtns  map[glfw.MouseButton]bool
	previousMouseBtns map[glfw.MouseButton]bool
	mouseDelta        [2]float64
	mouseWheelDelta   float64
}

// NewInputHandler creates a new input handler
func NewInputHandler(window *glfw.Window) *InputHandler {
	handler := &InputHandler{
		window:            window,
		currentKeys:       make(map[glfw.Key]bool),
		previousKeys:      make(map[glfw.Key]bool),
		currentMouseBtns:  make(map[glfw.MouseButton]bool),
		previousMouseBtns: make(map[glfw.MouseButton]bool),
	}

	window.SetScrollCallback(func(_ *glfw.Window, _, yoffset float64) {
		handler.mouseWheelDelta += yoffset
	})

	return handler
}

// Update samples the current input state
func (ih *InputHandler) Update() {
	for k, v := range ih.currentKeys {
		ih.previousKeys[k] = v
	}
	for b, v := range ih.currentMouseBtns {
		ih.previousMouseBtns[b] = v
	}

	ih.previousMousePos = ih.currentMousePos
	x, y := ih.window.GetCursorPos()
	ih.currentMousePos = [2]float64{x, y}
	ih.mouseDelta[0] = ih.currentMousePos[0] - ih.previousMousePos[0]
	ih.mouseDelta[1] = ih.currentMousePos[1] - ih.previousMousePos[1]

	for _, key := range trackedKeys {
		ih.currentKeys[key] = ih.window.GetKey(key) == glfw.Press
	}
	ih.currentMouseBtns[glfw.MouseButtonLeft] = ih.window.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
}

// IsKeyDown reports whether key is held
func (ih *InputHandler) IsKeyDown(key glfw.Key) bool {
	return ih.currentKeys[key]
}

// IsKeyPressed reports whether key went down this frame
func (ih *InputHandler) IsKeyPressed(key glfw.Key) bool {
	return ih.currentKeys[key] && !ih.previousKeys[key]
}

// IsMouseButtonDown reports whether button is held
func (ih *InputHandler) IsMouseButtonDown(button glfw.MouseButton) bool {
	return ih.currentMouseBtns[button]
}

// IsMouseButtonPressed reports whether button went down this frame
func (ih *InputHandler) IsMouseButtonPressed(button glfw.MouseButton) bool {
	return ih.currentMouseBtns[button] && !ih.previousMouseBtns[button]
}

// GetMouseDelta returns the cursor movement since the last frame
func (ih *InputHandler) GetMouseDelta() [2]float64 {
	return ih.mouseDelta
}

// GetMouseWheelDelta returns the scroll since the last call
func (ih *InputHandler) GetMouseWheelDelta() float64 {
	delta := ih.mouseWheelDelta
	ih.mouseWheelDelta = 0
	return delta
}

// DragRotation turns a cursor drag of dx, dy pixels into a rotation applied
// on top of current. Horizontal drags spin around the screen's vertical axis
// and vertical drags around its horizontal axis; radiansPerPixel sets the
// sensitivity. The result is normalized.
func DragRotation(current plot3d.Quat, dx, dy, radiansPerPixel float64) plot3d.Quat {
	if dx == 0 && dy == 0 {
		return current
	}
	angle := math.Hypot(dx, dy) * radiansPerPixel
	axis := [3]float64{dy, dx, 0}
	return plot3d.QuatFromAxisAngle(angle, axis).Mul(current).Normalized()
}
