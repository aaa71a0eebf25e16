// Package web serves an upload form that unpacks an atlas and shows the
// resulting sprites.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"image/png"
	"net/http"
	pathpkg "path"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/datafiles"
	"badc0de.net/pkg/go-texunpack/export"
	"badc0de.net/pkg/go-texunpack/formats"
	"badc0de.net/pkg/go-texunpack/paths"
	"badc0de.net/pkg/go-texunpack/texture"
	"badc0de.net/pkg/go-texunpack/unpack"
)

const (
	maxUploadBytes = 64 << 20
	thumbnailSize  = 128
)

// Options configure the handler.
type Options struct {
	Unpack      unpack.Options
	MaxSessions int
}

type Handler struct {
	opts      Options
	sessions  *sessionStore
	templates *template.Template
}

// NewHandler constructs the web handler. It fails only if the embedded
// templates do not parse.
func NewHandler(opts Options) (*Handler, error) {
	tmpl, err := template.ParseFS(datafiles.Templates, "*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}
	return &Handler{
		opts:      opts,
		sessions:  newSessionStore(opts.MaxSessions),
		templates: tmpl,
	}, nil
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		glog.Errorf("web: rendering index: %v", err)
	}
}

func (h *Handler) unpackHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.unpack", r.URL.Path)
	defer tr.Finish()

	fail := func(code int, err error) {
		tr.LazyPrintf("failed: %v", err)
		tr.SetError()
		http.Error(w, err.Error(), code)
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(http.StatusBadRequest, errors.Wrap(err, "reading upload"))
		return
	}

	opts := h.opts.Unpack
	if hint := r.FormValue("format"); hint != "" {
		f, err := formats.ForHint(hint)
		if err != nil {
			fail(http.StatusBadRequest, err)
			return
		}
		opts.Format = f
	}

	df, dh, err := r.FormFile("descriptor")
	if err != nil {
		fail(http.StatusBadRequest, errors.Wrap(err, "descriptor file missing"))
		return
	}
	defer df.Close()
	if opts.Format == atlas.FormatUnknown {
		if err := paths.ValidateDescriptorName(dh.Filename); err != nil {
			fail(http.StatusBadRequest, err)
			return
		}
	}

	imf, imh, err := r.FormFile("image")
	if err != nil {
		fail(http.StatusBadRequest, errors.Wrap(err, "image file missing"))
		return
	}
	defer imf.Close()
	if err := paths.ValidateImageName(imh.Filename); err != nil {
		fail(http.StatusBadRequest, err)
		return
	}
	img, format, err := texture.DecodeWithOptions(imf, opts.Texture)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Cause(err) == texture.ErrTooLarge {
			code = http.StatusRequestEntityTooLarge
		}
		fail(code, err)
		return
	}
	tr.LazyPrintf("decoded %s image %q: %v", format, imh.Filename, img.Bounds().Size())

	res, err := unpack.Unpack(r.Context(), dh.Filename, df, img, opts)
	if err != nil {
		code := http.StatusInternalServerError
		switch errors.Cause(err) {
		case atlas.ErrMalformedDescriptor, atlas.ErrUnsupportedFormat:
			code = http.StatusUnprocessableEntity
		}
		fail(code, err)
		return
	}

	sess := &session{
		id:             uuid.New(),
		created:        time.Now(),
		descriptorName: dh.Filename,
		imageName:      imh.Filename,
		result:         res,
	}
	h.sessions.add(sess)
	tr.LazyPrintf("session %s: %d sprites, %d failed", sess.id, len(res.Sprites), res.Failed())
	glog.V(1).Infof("web: session %s for %q", sess.id, dh.Filename)

	http.Redirect(w, r, "/session/"+sess.id.String(), http.StatusSeeOther)
}

// session looks up the session named in the request path, writing an error
// response if there is none.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "bad session id", http.StatusBadRequest)
		return nil, false
	}
	sess, ok := h.sessions.get(id)
	if !ok {
		http.Error(w, "no such session", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

type gallerySprite struct {
	Index         int
	Name          string
	Width, Height int
	Rotated       bool
	Thumbnail     template.URL
	Error         string
}

func thumbnail(res *unpack.Result, idx int) (template.URL, error) {
	img := resize.Thumbnail(thumbnailSize, thumbnailSize, res.Sprites[idx].Raster, resize.Lanczos3)
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return "", err
	}
	return template.URL(dataurl.New(buf.Bytes(), "image/png").String()), nil
}

func (h *Handler) galleryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	res := sess.result

	var data struct {
		ID      string
		Info    unpack.Info
		Sprites []gallerySprite
	}
	data.ID = sess.id.String()
	data.Info = res.Info(sess.imageName)
	for i := range res.Sprites {
		s := &res.Sprites[i]
		gs := gallerySprite{Index: i, Name: s.Name, Width: s.Width, Height: s.Height, Rotated: s.Rotated}
		if !s.OK() {
			gs.Error = fmt.Sprintf("%v: %s", s.Err, s.Message)
		} else if u, err := thumbnail(res, i); err != nil {
			gs.Error = err.Error()
		} else {
			gs.Thumbnail = u
		}
		data.Sprites = append(data.Sprites, gs)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "gallery.html", data); err != nil {
		glog.Errorf("web: rendering gallery for %s: %v", sess.id, err)
	}
}

type spriteInfo struct {
	Name    string   `json:"name"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Rotated bool     `json:"rotated"`
	Trimmed bool     `json:"trimmed"`
	PivotX  *float64 `json:"pivotX,omitempty"`
	PivotY  *float64 `json:"pivotY,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (h *Handler) infoHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	res := sess.result

	var out struct {
		unpack.Info
		Descriptor string       `json:"descriptor"`
		Sprites    []spriteInfo `json:"sprites"`
	}
	out.Info = res.Info(sess.imageName)
	out.Descriptor = sess.descriptorName
	out.Sprites = make([]spriteInfo, 0, len(res.Sprites))
	for i := range res.Sprites {
		s := &res.Sprites[i]
		si := spriteInfo{
			Name:    s.Name,
			Width:   s.Width,
			Height:  s.Height,
			X:       s.Frame.Rect.X,
			Y:       s.Frame.Rect.Y,
			Rotated: s.Rotated,
			Trimmed: s.Frame.Trimmed,
		}
		if p := s.Frame.Pivot; p != nil {
			si.PivotX, si.PivotY = &p.X, &p.Y
		}
		if !s.OK() {
			si.Error = fmt.Sprintf("%v: %s", s.Err, s.Message)
		}
		out.Sprites = append(out.Sprites, si)
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		glog.Errorf("web: encoding info for %s: %v", sess.id, err)
	}
}

func (h *Handler) spriteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil || idx < 0 || idx >= len(sess.result.Sprites) {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return
	}
	s := &sess.result.Sprites[idx]
	if !s.OK() {
		http.Error(w, fmt.Sprintf("sprite %q could not be extracted: %v: %s", s.Name, s.Err, s.Message), http.StatusNotFound)
		return
	}

	generation := 1 // bump if the way we generate it changes
	mime := "image/png"
	etag := fmt.Sprintf(`W/"sprite:%d:%s:%d:%s"`, generation, sess.id, idx, mime)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "private; max-age=3600")
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private; max-age=3600")
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", sess.created.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", pathpkg.Base(export.FileName(s.Name))))
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, s.Raster); err != nil {
		glog.Errorf("web: encoding sprite %d of %s: %v", idx, sess.id, err)
	}
}

func (h *Handler) flipbookHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	delay := export.DefaultFlipbookDelay
	if d := r.URL.Query().Get("delay"); d != "" {
		delay, _ = strconv.Atoi(d)
		// ignore invalid delay
		if delay <= 0 {
			delay = export.DefaultFlipbookDelay
		}
	}

	buf := &bytes.Buffer{}
	if err := export.WriteFlipbook(buf, sess.result.Sprites, delay); err != nil {
		glog.Errorf("web: flipbook for %s: %v", sess.id, err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "private; max-age=3600")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/unpack", h.unpackHandler).Methods(http.MethodPost)
	r.HandleFunc("/session/{id}", h.galleryHandler).Methods(http.MethodGet)
	r.HandleFunc("/session/{id}/info.json", h.infoHandler).Methods(http.MethodGet)
	r.HandleFunc("/session/{id}/sprite/{idx:[0-9]+}.png", h.spriteHandler).Methods(http.MethodGet)
	r.HandleFunc("/session/{id}/flipbook.gif", h.flipbookHandler).Methods(http.MethodGet)
}

// RegisterDebugRoutes exposes request traces. x/net/trace only serves them to
// local clients by default.
func (h *Handler) RegisterDebugRoutes(r *mux.Router) {
	r.HandleFunc("/debug/requests", trace.Traces)
	r.HandleFunc("/debug/events", trace.Events)
}
