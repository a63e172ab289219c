//go:build js && wasm

// GoToken WASM — client-side token renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o gotoken.wasm ./clients/wasm/
package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/xob0t/GoToken/pkg/codec"
	"github.com/xob0t/GoToken/pkg/maskpaint"
	"github.com/xob0t/GoToken/pkg/render"
)

var (
	proc = render.NewProcessor(wasmOptions())
	mask = maskpaint.New(0)
)

// wasmOptions falls back to PNG output when the build has no WebP encoder.
func wasmOptions() render.Options {
	opts := render.DefaultOptions()
	if !codec.WebPSupported {
		opts.Encode.Format = codec.FormatPNG
	}
	return opts
}

func main() {
	fmt.Println("GoToken WASM loaded")

	js.Global().Set("goRender", js.FuncOf(renderToken))
	js.Global().Set("goLoadBorder", js.FuncOf(loadBorder))
	js.Global().Set("goDrawOnMask", js.FuncOf(drawOnMask))
	js.Global().Set("goClearMask", js.FuncOf(clearMask))
	js.Global().Set("goSetMask", js.FuncOf(setMask))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func bytesFrom(v js.Value) []byte {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func bytesTo(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

// goRender(imageBytes, settingsJSON, useMask) — returns encoded bytes (WebP,
// or PNG without a WebP encoder) or {error}. The painted mask is used when
// useMask is true and its size matches the canvas.
func renderToken(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorValue(fmt.Errorf("need imageBytes, settingsJSON"))
	}

	s := render.DefaultSettings()
	if err := json.Unmarshal([]byte(args[1].String()), &s); err != nil {
		return errorValue(fmt.Errorf("parse settings: %w", err))
	}
	s, err := s.Resolved()
	if err != nil {
		return errorValue(err)
	}

	req := render.Request{Image: bytesFrom(args[0]), Settings: s}
	if len(args) > 2 && args[2].Truthy() && mask.Size() == int(s.Dimensions.Size) {
		req.Mask = mask.Bytes()
	}

	out, err := proc.Render(req)
	if err != nil {
		return errorValue(err)
	}
	return bytesTo(out)
}

// goLoadBorder(sheetBytes, metaJSON) or goLoadBorder(bundleBytes) — returns
// "ok" or {error}. A failed load keeps the previous atlas.
func loadBorder(this js.Value, args []js.Value) any {
	var err error
	switch len(args) {
	case 1:
		err = proc.LoadBundle(bytesFrom(args[0]))
	case 2:
		err = proc.LoadBorder(bytesFrom(args[0]), []byte(args[1].String()))
	default:
		err = fmt.Errorf("need sheetBytes, metaJSON or bundleBytes")
	}
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf("ok")
}

// goDrawOnMask(size, add, x, y, diameter) — paints or erases a disc and
// returns the mask as raw RGBA. A size change starts a clear mask.
func drawOnMask(this js.Value, args []js.Value) any {
	if len(args) < 5 {
		return errorValue(fmt.Errorf("need size, add, x, y, diameter"))
	}
	size := args[0].Int()
	if mask.Size() != size {
		mask.Clear(size)
	}
	mask.Stroke(args[2].Float(), args[3].Float(), args[4].Float(), args[1].Bool())
	return bytesTo(mask.Bytes())
}

// goClearMask(size) — returns the cleared mask.
func clearMask(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue(fmt.Errorf("need size"))
	}
	mask.Clear(args[0].Int())
	return bytesTo(mask.Bytes())
}

// goSetMask(size, rawRGBA) — replaces the mask; raw of the wrong length
// leaves it clear.
func setMask(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorValue(fmt.Errorf("need size, rawRGBA"))
	}
	raw, err := codec.MaskBytes(bytesFrom(args[1]), args[0].Int())
	if err != nil {
		raw = nil
	}
	mask.Load(raw, args[0].Int())
	return bytesTo(mask.Bytes())
}
