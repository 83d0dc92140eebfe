// ABOUTME: JSON HTTP API exposing the panel resolver.
// ABOUTME: Routes menus, pages, widgets, settings and model dispatch through chi.

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"

	apierrors "github.com/2389/panel/internal/errors"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

const maxRequestBody = 1 << 20

// ResolverSource hands out the resolver to serve a request with. The
// resolver may be replaced between requests when the definition reloads.
type ResolverSource interface {
	Resolver() *panel.Resolver
}

type Handlers struct {
	source   ResolverSource
	store    *store.Store
	validate *validator.Validate
}

func NewHandlers(source ResolverSource, s *store.Store) *Handlers {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	return &Handlers{source: source, store: s, validate: validate}
}

func (h *Handlers) resolver() *panel.Resolver {
	return h.source.Resolver()
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menus", h.menus)
		r.Get("/pages/*", h.pageConfig)
		r.Get("/pagedefs/*", h.pageDef)
		r.Get("/widgets/{widget}", h.widget)
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.updateSettings)

		r.Route("/models/{model}", func(r chi.Router) {
			r.Get("/", h.modelPage)
			r.Get("/settings", h.getModelSettings)
			r.Put("/settings", h.setModelSettings)
			r.Get("/records", h.listRecords)
			r.Post("/records", h.createRecord)
			r.Get("/records/{pk}", h.getRecord)
			r.Put("/records/{pk}", h.updateRecord)
			r.Post("/records/{pk}/actions/{action}", h.recordAction)
			r.Post("/actions/{action}", h.globalAction)
			r.Post("/batch/{action}", h.batchAction)
			r.Get("/select/{field}", h.querySelect)
		})

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", h.listLogs)
			r.Get("/stats", h.logStats)
			r.Get("/top", h.topEndpoints)
		})
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) menus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resolver().Menus())
}

func (h *Handlers) pageConfig(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	page, ok := h.resolver().PageConfig(path)
	if !ok {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "no page at /"+strings.TrimLeft(path, "/"))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) pageDef(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	def, ok := h.resolver().PageDef(path)
	if !ok {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "no page at /"+strings.TrimLeft(path, "/"))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *Handlers) widget(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "widget")
	widget, ok := h.resolver().WidgetConfig(name)
	if !ok {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "widget not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, widget)
}

func (h *Handlers) modelPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")
	page, ok := h.resolver().ModelPageConfig(name)
	if !ok {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "model not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// getSettings reads ?names=a,b, or every setting when names is absent
func (h *Handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	resolver := h.resolver()
	var names []string
	if raw := r.URL.Query().Get("names"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	} else {
		names = resolver.SettingNames()
	}
	result, err := resolver.Settings(r.Context(), names)
	respond(w, result, err)
}

func (h *Handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if !decodeBody(w, r, &values) {
		return
	}
	result, err := h.resolver().UpdateSettings(r.Context(), values)
	respond(w, result, err)
}

func (h *Handlers) getModelSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.resolver().ModelSettings(r.Context(), chi.URLParam(r, "model"))
	respond(w, result, err)
}

func (h *Handlers) setModelSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if !decodeBody(w, r, &values) {
		return
	}
	result, err := h.resolver().SetModelSettings(r.Context(), chi.URLParam(r, "model"), values)
	respond(w, result, err)
}

func (h *Handlers) listRecords(w http.ResponseWriter, r *http.Request) {
	result, err := h.resolver().ListModel(r.Context(), chi.URLParam(r, "model"), queryParams(r))
	respond(w, result, err)
}

func (h *Handlers) getRecord(w http.ResponseWriter, r *http.Request) {
	result, err := h.resolver().GetModel(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "pk"))
	respond(w, result, err)
}

func (h *Handlers) createRecord(w http.ResponseWriter, r *http.Request) {
	var attrs panel.Params
	if !decodeBody(w, r, &attrs) {
		return
	}
	result, err := h.resolver().CreateModel(r.Context(), chi.URLParam(r, "model"), attrs)
	if err != nil {
		apierrors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) updateRecord(w http.ResponseWriter, r *http.Request) {
	var attrs panel.Params
	if !decodeBody(w, r, &attrs) {
		return
	}
	result, err := h.resolver().UpdateModel(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "pk"), attrs)
	respond(w, result, err)
}

func (h *Handlers) recordAction(w http.ResponseWriter, r *http.Request) {
	params, ok := optionalParams(w, r)
	if !ok {
		return
	}
	result, err := h.resolver().ActionModel(r.Context(),
		chi.URLParam(r, "model"), chi.URLParam(r, "action"), chi.URLParam(r, "pk"), params)
	respond(w, result, err)
}

func (h *Handlers) globalAction(w http.ResponseWriter, r *http.Request) {
	params, ok := optionalParams(w, r)
	if !ok {
		return
	}
	result, err := h.resolver().GlobalActionModel(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "action"), params)
	respond(w, result, err)
}

// batchRequest is the body of a batch action
type batchRequest struct {
	PKs    []string     `json:"pks" validate:"required,min=1,dive,required"`
	Params panel.Params `json:"params"`
}

func (h *Handlers) batchAction(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	result, err := h.resolver().BatchActionModel(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "action"), req.PKs, req.Params)
	respond(w, result, err)
}

func (h *Handlers) querySelect(w http.ResponseWriter, r *http.Request) {
	result, err := h.resolver().QueryModelSelect(r.Context(),
		chi.URLParam(r, "model"), chi.URLParam(r, "field"), r.URL.Query().Get("q"))
	respond(w, result, err)
}

// respond writes result as JSON, or the error mapped to its status code
func respond(w http.ResponseWriter, result any, err error) {
	if err != nil {
		apierrors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody decodes a JSON body into dst, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusBadRequest, apierrors.ErrInvalidBody, "request body must be a JSON object", err.Error())
		return false
	}
	return true
}

// optionalParams decodes a JSON body when present and merges it over the query string
func optionalParams(w http.ResponseWriter, r *http.Request) (panel.Params, bool) {
	params := queryParams(r)
	if r.ContentLength == 0 {
		return params, true
	}
	var body panel.Params
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		// chunked requests carry no length, so an empty body shows up as EOF
		if errors.Is(err, io.EOF) {
			return params, true
		}
		apierrors.WriteErrorWithDetails(w, http.StatusBadRequest, apierrors.ErrInvalidBody, "request body must be a JSON object", err.Error())
		return nil, false
	}
	for k, v := range body {
		params[k] = v
	}
	return params, true
}

// queryParams flattens the query string: single values become strings,
// repeated keys become lists
func queryParams(r *http.Request) panel.Params {
	query := r.URL.Query()
	params := make(panel.Params, len(query))
	for key, values := range query {
		if len(values) == 1 {
			params[key] = values[0]
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		params[key] = list
	}
	return params
}

func writeValidationError(w http.ResponseWriter, err error) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrValidationFailed, err.Error())
		return
	}
	first := verrs[0]
	apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrValidationFailed,
		"failed on the '"+first.Tag()+"' rule", first.Field())
}

// jsonFieldName reports struct fields by their JSON name in validation errors
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
