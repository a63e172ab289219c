// Package server exposes the token renderer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/xob0t/GoToken/pkg/canvas"
	"github.com/xob0t/GoToken/pkg/codec"
	"github.com/xob0t/GoToken/pkg/maskpaint"
	"github.com/xob0t/GoToken/pkg/render"
)

// Server holds the processor shared by every request.
type Server struct {
	proc      *render.Processor
	maxUpload int64
	log       *slog.Logger
	mux       *http.ServeMux
}

// New builds the API around p. maxUploadMB caps multipart bodies.
func New(p *render.Processor, maxUploadMB int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		proc:      p,
		maxUpload: int64(maxUploadMB) << 20,
		log:       log,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/render", s.handleRender)
	s.mux.HandleFunc("GET /api/border", s.handleGetBorder)
	s.mux.HandleFunc("POST /api/border", s.handleLoadBorder)
	s.mux.HandleFunc("DELETE /api/border", s.handleUnloadBorder)
	s.mux.HandleFunc("GET /api/sizes", s.handleSizes)
	s.mux.HandleFunc("POST /api/mask/stroke", s.handleMaskStroke)
	return s
}

// ServeHTTP logs each request and dispatches it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"elapsed", time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// When open is set the default browser is pointed at the sizes endpoint.
func (s *Server) Run(ctx context.Context, addr string, open bool) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	hs := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	url := "http://" + ln.Addr().String()
	s.log.Info("GoToken API listening", "url", url)
	if open {
		go openBrowser(url + "/api/sizes")
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ── Render ──

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	img, err := formFile(r, "image")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	settings := render.DefaultSettings()
	if opt := r.FormValue("options"); opt != "" {
		if err := json.Unmarshal([]byte(opt), &settings); err != nil {
			s.fail(w, http.StatusBadRequest, fmt.Errorf("options: %w", err))
			return
		}
	}
	resolved, err := settings.Resolved()
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}

	req := render.Request{Image: img, Settings: resolved}
	mask, err := optionalFile(r, "mask")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if mask != nil {
		if req.Mask, err = codec.MaskBytes(mask, int(resolved.Dimensions.Size)); err != nil {
			s.fail(w, statusFor(err), err)
			return
		}
	}

	enc := s.proc.Options().Encode
	if f := r.URL.Query().Get("format"); f != "" {
		if enc.Format, err = codec.FormatFromPath("out." + f); err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
	}

	out, err := s.proc.RenderImage(req)
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	data, err := codec.EncodeBytes(out, enc)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", enc.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// ── Border ──

type frameInfo struct {
	Name  string `json:"name"`
	Width uint32 `json:"width"`
}

type borderStatus struct {
	Loaded      bool        `json:"loaded"`
	Rings       []frameInfo `json:"rings"`
	Backgrounds []frameInfo `json:"backgrounds"`
}

func (s *Server) status() borderStatus {
	st := borderStatus{Rings: []frameInfo{}, Backgrounds: []frameInfo{}}
	a := s.proc.Atlas()
	if a == nil {
		return st
	}
	st.Loaded = true
	for _, f := range a.RingFrames() {
		st.Rings = append(st.Rings, frameInfo{Name: f.Name, Width: f.Width()})
	}
	for _, f := range a.BkgFrames() {
		st.Backgrounds = append(st.Backgrounds, frameInfo{Name: f.Name, Width: f.Width()})
	}
	return st
}

func (s *Server) handleGetBorder(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

// handleLoadBorder accepts either a "bundle" ZIP or an "image" sheet plus
// its "meta" JSON.
func (s *Server) handleLoadBorder(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	bundle, err := optionalFile(r, "bundle")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if bundle != nil {
		err = s.proc.LoadBundle(bundle)
	} else {
		sheet, ierr := formFile(r, "image")
		meta, merr := formFile(r, "meta")
		if ierr != nil || merr != nil {
			s.fail(w, http.StatusBadRequest, errors.New("need a bundle, or an image and its meta"))
			return
		}
		err = s.proc.LoadBorder(sheet, meta)
	}
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleUnloadBorder(w http.ResponseWriter, r *http.Request) {
	s.proc.SetAtlas(nil)
	writeJSON(w, http.StatusOK, s.status())
}

// ── Sizes ──

type sizeInfo struct {
	Name      string            `json:"name"`
	Normal    canvas.Dimensions `json:"normal"`
	Oversized canvas.Dimensions `json:"oversized"`
}

func (s *Server) handleSizes(w http.ResponseWriter, r *http.Request) {
	sizes := make([]sizeInfo, 0, len(canvas.Presets))
	for _, name := range canvas.PresetNames() {
		normal, _ := canvas.FromPreset(name, false)
		over, _ := canvas.FromPreset(name, true)
		sizes = append(sizes, sizeInfo{Name: name, Normal: normal, Oversized: over})
	}
	writeJSON(w, http.StatusOK, sizes)
}

// ── Mask painting ──

type stroke struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Diameter float64 `json:"diameter"`
	Add      bool    `json:"add"`
}

// handleMaskStroke applies the "strokes" JSON array to the optional "mask"
// file and returns the result as raw RGBA. "size" is the canvas edge. A
// mask of the wrong size is ignored and painting starts from a clear one.
func (s *Server) handleMaskStroke(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	size, err := strconv.Atoi(r.FormValue("size"))
	if err != nil || size <= 0 || size > canvas.MaxSize {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid size %q", r.FormValue("size")))
		return
	}

	var strokes []stroke
	if err := json.Unmarshal([]byte(r.FormValue("strokes")), &strokes); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("strokes: %w", err))
		return
	}

	raw, err := optionalFile(r, "mask")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	c := maskpaint.New(size)
	if raw != nil {
		c.Load(raw, size)
	}
	for _, st := range strokes {
		c.Stroke(st.X, st.Y, st.Diameter, st.Add)
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(c.Bytes())
}

// ── Helpers ──

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, http.StatusRequestEntityTooLarge, err)
		} else {
			s.fail(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		}
		return false
	}
	return true
}

func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// optionalFile is formFile for parts that may be absent. It returns nil data
// only when the part is missing; any other failure is an error.
func optionalFile(r *http.Request, field string) ([]byte, error) {
	data, err := formFile(r, field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return data, err
}

// statusFor maps processor errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		decode   *render.DecodeError
		mismatch *render.SizeMismatchError
		parse    *render.ParseError
		colorErr *render.ColorParseError
		bundle   *render.BundleError
		invalid  *render.ValidationError
		noFrame  *render.NoSuitableFrameError
	)
	switch {
	case errors.As(err, &noFrame):
		return http.StatusUnprocessableEntity
	case errors.As(err, &decode), errors.As(err, &mismatch), errors.As(err, &parse),
		errors.As(err, &bundle), errors.As(err, &colorErr), errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	} else {
		s.log.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Start()
}
