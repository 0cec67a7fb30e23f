package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/promptbase/internal/config"
	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/ops"
	"github.com/hpungsan/promptbase/internal/query"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    ops.Store
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /prompts: the list, the filter controls and the create form.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r.URL.Query())
	input := h.listInput(filter, r)

	result, err := ops.List(r.Context(), h.store, h.cfg, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", h.listPage(filter, result, CreateForm{}))
}

// HandleCreate handles POST /prompts. A blank title or body re-renders the
// form with 422 and the submitted values kept.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	form := CreateForm{
		Title:    r.PostForm.Get("title"),
		Body:     r.PostForm.Get("body"),
		Favorite: formBool(r.PostForm.Get("favorite")),
	}

	p, err := ops.Create(r.Context(), h.store, ops.CreateInput{
		Title:    form.Title,
		Body:     form.Body,
		Favorite: form.Favorite,
	})
	if err != nil {
		if !errors.Is(err, errors.ErrValidation) || wantsJSON(r) {
			h.renderer.renderError(w, r, err)
			return
		}
		form.Error = errors.As(err).Message
		h.renderListWithForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, p)
		return
	}
	h.redirect(w, r, "/prompts")
}

// HandleDetail handles GET /prompts/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	p, err := ops.Get(r.Context(), h.store, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:     PageData{Title: p.Title, Version: h.renderer.version},
		Prompt:       p,
		RenderedHTML: renderMarkdown(p.Body),
	})
}

// HandleEdit handles GET /prompts/{id}/edit.
func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	p, err := ops.Get(r.Context(), h.store, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "edit", EditPageData{
		PageData: PageData{Title: "Edit " + p.Title, Version: h.renderer.version},
		Prompt:   p,
		Title:    p.Title,
		Body:     p.Body,
	})
}

// HandleUpdate handles POST /prompts/{id}: replace title and body.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	title := r.PostForm.Get("title")
	body := r.PostForm.Get("body")

	p, err := ops.Update(r.Context(), h.store, ops.UpdateInput{ID: id, Title: title, Body: body})
	if err != nil {
		if !errors.Is(err, errors.ErrValidation) || wantsJSON(r) {
			h.renderer.renderError(w, r, err)
			return
		}
		current, getErr := ops.Get(r.Context(), h.store, id)
		if getErr != nil {
			h.renderer.renderError(w, r, getErr)
			return
		}
		h.renderer.renderPageStatus(w, r, http.StatusUnprocessableEntity, "edit", EditPageData{
			PageData: PageData{Title: "Edit " + current.Title, Version: h.renderer.version},
			Prompt:   current,
			Title:    title,
			Body:     body,
			Error:    errors.As(err).Message,
		})
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.redirect(w, r, "/prompts/"+strconv.FormatInt(p.ID, 10))
}

// HandleFavorite handles POST /prompts/{id}/favorite. With no "value" field
// the flag is toggled.
func (h *Handlers) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.FavoriteInput{ID: id}
	if v := r.PostForm.Get("value"); v != "" {
		b := formBool(v)
		input.Value = &b
	}

	p, err := ops.Favorite(r.Context(), h.store, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.redirect(w, r, returnPath(r.PostForm.Get("return"), "/prompts/"+strconv.FormatInt(p.ID, 10)))
}

// HandleDelete handles DELETE /prompts/{id} and POST /prompts/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Delete(r.Context(), h.store, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.redirect(w, r, "/prompts")
}

// handleCrossOrigin answers mutations rejected by the cross-origin check.
func (h *Handlers) handleCrossOrigin(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderError(w, r, errors.NewForbidden("cross-origin request rejected"))
}

// redirect sends htmx clients an HX-Redirect and everyone else a 303.
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// renderListWithForm re-renders the list page around a rejected create form.
func (h *Handlers) renderListWithForm(w http.ResponseWriter, r *http.Request, status int, form CreateForm) {
	filter := filterFromQuery(r.URL.Query())
	result, err := ops.List(r.Context(), h.store, h.cfg, h.listInput(filter, r))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPageStatus(w, r, status, "list", h.listPage(filter, result, form))
}

func (h *Handlers) listInput(f ListFilter, r *http.Request) ops.ListInput {
	return ops.ListInput{
		Search:        f.Search,
		Sort:          f.Sort,
		Direction:     f.Direction,
		Since:         f.Since,
		FavoritesOnly: f.FavoritesOnly,
		Limit:         parseIntParam(r, "limit", 0),
		Offset:        max(parseIntParam(r, "offset", 0), 0),
	}
}

func (h *Handlers) listPage(f ListFilter, result *ops.ListOutput, form CreateForm) ListPageData {
	// ops.List already accepted these, so the parses cannot fail
	sortKey, _ := query.ParseSortKey(pick(f.Sort, h.cfg.DefaultSort))
	dir, _ := query.ParseDirection(pick(f.Direction, h.cfg.DefaultDirection))
	since, _ := query.ParseDateFilter(f.Since)
	f.Sort, f.Direction, f.Since = string(sortKey), string(dir), string(since)

	data := ListPageData{
		PageData:    PageData{Title: "Prompts", Version: h.renderer.version},
		Items:       result.Items,
		Pagination:  result.Pagination,
		SortLabel:   result.Sort,
		Filter:      f,
		Form:        form,
		SortKeys:    toStrings(query.SortKeys),
		DateFilters: toStrings(query.DateFilters),
	}

	p := result.Pagination
	if p.Offset > 0 {
		data.PrevURL = listURL(f, max(p.Offset-p.Limit, 0), p.Limit)
	}
	if p.HasMore {
		data.NextURL = listURL(f, p.Offset+p.Limit, p.Limit)
	}
	return data
}

// filterFromQuery reads the list filter from query parameters.
// "q" is the search box; "favorites" the favorites-only checkbox.
func filterFromQuery(q url.Values) ListFilter {
	return ListFilter{
		Search:        q.Get("q"),
		Sort:          q.Get("sort"),
		Direction:     q.Get("dir"),
		Since:         q.Get("since"),
		FavoritesOnly: formBool(q.Get("favorites")),
	}
}

func listURL(f ListFilter, offset, limit int) string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	v.Set("sort", f.Sort)
	v.Set("dir", f.Direction)
	v.Set("since", f.Since)
	if f.FavoritesOnly {
		v.Set("favorites", "true")
	}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(offset))
	return "/prompts?" + v.Encode()
}

// parseID reads the {id} path value.
func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, errors.NewInvalidRequest("prompt id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("invalid prompt id: " + raw)
	}
	return id, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// formBool accepts the values a checkbox or query flag can carry.
func formBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// returnPath allows only local absolute paths as a redirect target.
func returnPath(s, fallback string) string {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") && !strings.Contains(s, "\\") {
		return s
	}
	return fallback
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
