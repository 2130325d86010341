package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/regimen/internal/assistant"
	"github.com/hpungsan/regimen/internal/errors"
	"github.com/hpungsan/regimen/internal/shop"
)

// Notice keys carried in the redirect query. Only known keys are displayed so
// the page never reflects arbitrary text.
const noticeNoSelection = "no-selection"

var notices = map[string]string{
	noticeNoSelection: assistant.NoSelectionMessage,
}

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	ctrl     *shop.Controller
	renderer *Renderer
}

// HandleProducts handles GET /products: the whole screen, or the filtered
// product list as JSON.
func (h *Handlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	if wantsJSON(r) {
		products, err := h.ctrl.ProductsInCategory(r.Context(), category)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, map[string]any{"category": category, "products": products})
		return
	}

	var detailID *int
	if raw := r.URL.Query().Get("detail"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("detail must be an integer product id"))
			return
		}
		detailID = &id
	}

	h.renderProducts(w, r, shop.BrowseInput{
		Category: category,
		DetailID: detailID,
		Notice:   notices[r.URL.Query().Get("notice")],
	})
}

// HandleProduct handles GET /products/{id}: the product as JSON, or the page
// for its category with the detail overlay open.
func (h *Handlers) HandleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	p, err := h.ctrl.Detail(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.renderProducts(w, r, shop.BrowseInput{Category: p.Category, DetailID: &p.ID})
}

// HandleCategories handles GET /categories.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.ctrl.Categories(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// HandleSelection handles GET /selection.
func (h *Handlers) HandleSelection(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.ctrl.Selection())
}

// HandleToggle handles POST /selection/{id}.
func (h *Handlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := h.ctrl.Toggle(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	redirectBack(w, r, "", "product-"+strconv.Itoa(id))
}

// HandleRemove handles POST /selection/remove/{position}.
func (h *Handlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	position, err := pathInt(r, "position")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := h.ctrl.RemoveAt(r.Context(), position)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	redirectBack(w, r, "", "selected")
}

// HandleClear handles POST /selection/clear.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	out, err := h.ctrl.Clear(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	redirectBack(w, r, "", "selected")
}

// HandleRoutine handles POST /routine. Blocks until the reply (or fallback) is appended.
func (h *Handlers) HandleRoutine(w http.ResponseWriter, r *http.Request) {
	res := h.ctrl.GenerateRoutine(r.Context())

	if wantsJSON(r) {
		body := map[string]any{"requested": res.Requested}
		if res.Requested {
			body["reply"] = res.Reply
			body["fallback"] = res.Fallback
		} else {
			body["notice"] = res.Notice
		}
		renderJSON(w, http.StatusOK, body)
		return
	}

	notice := ""
	if !res.Requested {
		notice = noticeNoSelection
	}
	redirectBack(w, r, notice, "chat")
}

// HandleAsk handles POST /chat with the follow-up text in the "message" field.
// Blank messages are ignored.
func (h *Handlers) HandleAsk(w http.ResponseWriter, r *http.Request) {
	reply, sent := h.ctrl.Ask(r.Context(), r.FormValue("message"))

	if wantsJSON(r) {
		body := map[string]any{"sent": sent}
		if sent {
			body["reply"] = reply
		}
		renderJSON(w, http.StatusOK, body)
		return
	}
	redirectBack(w, r, "", "chat")
}

// HandleTranscript handles GET /chat.
func (h *Handlers) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"messages": h.ctrl.Transcript()})
}

func (h *Handlers) renderProducts(w http.ResponseWriter, r *http.Request, input shop.BrowseInput) {
	page, err := h.ctrl.Browse(r.Context(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	title := "Products"
	if page.Detail != nil {
		title = page.Detail.Name
	}
	h.renderer.renderPage(w, "products", ProductsPageData{
		PageData: PageData{Title: title, Version: h.renderer.version},
		Page:     page,
	})
}

// redirectBack answers a form POST with 303 See Other to the products page,
// keeping the category the form was submitted from.
func redirectBack(w http.ResponseWriter, r *http.Request, notice, anchor string) {
	q := url.Values{}
	if category := strings.TrimSpace(r.FormValue("category")); category != "" {
		q.Set("category", category)
	}
	if notice != "" {
		q.Set("notice", notice)
	}

	target := "/products"
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	if anchor != "" {
		target += "#" + anchor
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// pathInt parses an integer path parameter.
func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return n, nil
}
