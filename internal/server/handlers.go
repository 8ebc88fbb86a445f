package server

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/typediagram/pkg/buildinfo"
	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/httputil"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/pipeline"
)

// headerCache reports whether a response was served from the cache.
const headerCache = "X-Cache"

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// =============================================================================
// Layout and Render
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(r, pipeline.FormatJSON)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := layout.MarshalDrawing(d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set(headerCache, cacheHeader(hit))
	writeArtifact(w, pipeline.FormatJSON, data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(r, pipeline.FormatSVG)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := pipeline.ParseInput(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var (
		artifacts map[string][]byte
		hit       bool
	)
	if in.Drawing != nil {
		artifacts, hit, err = s.runner.RenderWithCacheInfo(r.Context(), in.Drawing, opts)
	} else {
		var res *pipeline.Result
		res, err = s.runner.Execute(r.Context(), *in.Document, opts)
		if res != nil {
			artifacts, hit = res.Artifacts, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set(headerCache, cacheHeader(hit))
	writeArtifact(w, format, artifacts[format])
}

func (s *Server) handleNodelink(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if doc.Kind != diagram.KindAST {
		writeError(w, r, errs.New(errs.ErrCodeInvalidDocument, "$.kind: nodelink needs an ast document, got %q", doc.Kind))
		return
	}
	opts, err := s.options(r, pipeline.FormatSVG)
	if err != nil {
		writeError(w, r, err)
		return
	}
	artifacts, err := s.runner.RenderNodelink(r.Context(), doc.Tree, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	writeArtifact(w, format, artifacts[format])
}

// =============================================================================
// Typing
// =============================================================================

type typingResponse struct {
	Expression string        `json:"expression"`
	Parsed     bool          `json:"parsed"`
	Panels     []panelResult `json:"panels"`
	Cache      cacheInfo     `json:"cache"`
}

type panelResult struct {
	Name    string          `json:"name"`
	Kind    diagram.Kind    `json:"kind"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	SVG     string          `json:"svg"`
	Drawing *layout.Drawing `json:"drawing"`
}

type cacheInfo struct {
	Typing bool `json:"typing"`
	Layout bool `json:"layout"`
	Render bool `json:"render"`
}

type rejectedResponse struct {
	Parsed bool `json:"parsed"`
	errorBody
}

func (s *Server) handleTyping(w http.ResponseWriter, r *http.Request) {
	if s.typer == nil {
		writeError(w, r, errs.New(errs.ErrCodeEngineUnavailable, "no inference engine configured"))
		return
	}
	q := r.URL.Query()
	opts := s.defaults
	opts.Formats = []string{pipeline.FormatSVG}
	if p := q.Get("panels"); p != "" {
		opts.Panels = strings.Split(p, ",")
	}
	opts.Refresh = q.Get("refresh") == "true"

	res, err := s.runner.Typing(r.Context(), s.typer, q.Get("expression"), opts)
	if errs.Is(err, errs.ErrCodeExpressionRejected) {
		status, code := statusOf(err)
		writeJSON(w, status, rejectedResponse{errorBody: errorBody{
			Error:     errorDetail{Code: code, Message: errs.UserMessage(err)},
			RequestID: httputil.RequestID(r.Context()),
		}})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := typingResponse{
		Expression: res.Expression,
		Parsed:     true,
		Cache: cacheInfo{
			Typing: res.CacheInfo.TypingHit,
			Layout: res.CacheInfo.LayoutHit,
			Render: res.CacheInfo.RenderHit,
		},
	}
	for _, p := range res.Panels {
		out.Panels = append(out.Panels, panelResult{
			Name:    p.Name,
			Kind:    p.Result.Kind,
			Width:   p.Result.Stats.Width,
			Height:  p.Result.Stats.Height,
			SVG:     string(p.Result.Artifacts[pipeline.FormatSVG]),
			Drawing: p.Result.Drawing,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Request Parsing
// =============================================================================

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "empty request body")
	}
	return data, nil
}

func readDocument(r *http.Request) (diagram.Document, error) {
	data, err := readBody(r)
	if err != nil {
		return diagram.Document{}, err
	}
	return diagram.Decode(data)
}

// options applies the query parameters format, scale, background,
// embed_fonts and refresh to the server defaults.
func (s *Server) options(r *http.Request, defaultFormat string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults

	format := q.Get("format")
	if format == "" {
		format = defaultFormat
	}
	opts.Formats = []string{format}

	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || !(scale > 0 && scale <= pipeline.MaxScale) {
			return opts, errs.New(errs.ErrCodeInvalidInput, "scale must be a number in (0, %v], got %q", pipeline.MaxScale, v)
		}
		opts.Scale = scale
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}
	if v := q.Get("embed_fonts"); v != "" {
		opts.EmbedFonts = slices.Contains([]string{"1", "true"}, v)
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}
