// Package testutil provides an in-memory fake of the finflow REST backend
// served over httptest, plus fixtures for seeding it.
//
// Example:
//
//	backend := testutil.NewBackend(t)
//	food := backend.SeedCategory("Alimentação", model.CategoryTypeExpense)
//	client := api.NewClient(backend.URL(), backend.TokenSource())
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"github.com/Veraticus/finflow/internal/model"
)

// DefaultToken is the bearer token the backend accepts unless changed.
const DefaultToken = "test-token"

// Backend is a fake REST backend. It is safe for concurrent use.
type Backend struct {
	server        *httptest.Server
	failures      map[string]failure
	categories    map[int]model.Category
	subcategories map[int]model.Subcategory
	transactions  map[model.Kind]map[int]model.Transaction
	users         map[string]registeredUser
	Token         string
	requests      []string
	nextID        int
	ExpiresIn     int64
	mu            sync.Mutex
}

type failure struct {
	message string
	status  int
}

type registeredUser struct {
	password string
	user     model.User
}

// NewBackend starts a fake backend that is shut down when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		Token:         DefaultToken,
		ExpiresIn:     86400000,
		failures:      make(map[string]failure),
		categories:    make(map[int]model.Category),
		subcategories: make(map[int]model.Subcategory),
		transactions: map[model.Kind]map[int]model.Transaction{
			model.KindIncome:  {},
			model.KindExpense: {},
		},
		users: make(map[string]registeredUser),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", b.handleLogin)
	mux.HandleFunc("POST /api/auth/registro", b.handleRegister)

	mux.HandleFunc("GET /api/categorias", b.authed(b.listCategories))
	mux.HandleFunc("POST /api/categorias", b.authed(b.createCategory))
	mux.HandleFunc("GET /api/categorias/tipo/{type}", b.authed(b.listCategoriesByType))
	mux.HandleFunc("GET /api/categorias/{id}", b.authed(b.getCategory))
	mux.HandleFunc("PUT /api/categorias/{id}", b.authed(b.updateCategory))
	mux.HandleFunc("DELETE /api/categorias/{id}", b.authed(b.deleteCategory))

	mux.HandleFunc("GET /api/subcategorias", b.authed(b.listSubcategories))
	mux.HandleFunc("POST /api/subcategorias", b.authed(b.createSubcategory))
	mux.HandleFunc("GET /api/subcategorias/categoria/{id}", b.authed(b.listSubcategoriesByCategory))
	mux.HandleFunc("GET /api/subcategorias/{id}", b.authed(b.getSubcategory))
	mux.HandleFunc("PUT /api/subcategorias/{id}", b.authed(b.updateSubcategory))
	mux.HandleFunc("DELETE /api/subcategorias/{id}", b.authed(b.deleteSubcategory))

	for kind, resource := range map[model.Kind]string{model.KindIncome: "receitas", model.KindExpense: "despesas"} {
		h := &transactionHandler{backend: b, kind: kind}
		mux.HandleFunc("GET /api/"+resource, b.authed(h.list))
		mux.HandleFunc("POST /api/"+resource, b.authed(h.create))
		mux.HandleFunc("GET /api/"+resource+"/periodo", b.authed(h.listByPeriod))
		mux.HandleFunc("GET /api/"+resource+"/pendentes", b.authed(h.listPending))
		mux.HandleFunc("GET /api/"+resource+"/{id}", b.authed(h.get))
		mux.HandleFunc("PUT /api/"+resource+"/{id}", b.authed(h.update))
		mux.HandleFunc("DELETE /api/"+resource+"/{id}", b.authed(h.delete))
	}

	b.server = httptest.NewServer(b.record(mux))
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the API base URL, including the /api prefix.
func (b *Backend) URL() string {
	return b.server.URL + "/api"
}

// TokenSource returns a static source for the backend's token.
func (b *Backend) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: b.Token, TokenType: "Bearer"})
}

// Fail makes every request to route ("METHOD /path" without the /api prefix)
// fail with status and message. An empty message sends an empty body.
func (b *Backend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, message: message}
}

// Requests returns every request received, as "METHOD /path?query" without
// the /api prefix.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// CountRequests counts requests whose "METHOD /path" starts with prefix.
func (b *Backend) CountRequests(prefix string) int {
	n := 0
	for _, r := range b.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// RegisterUser adds an account that can log in.
func (b *Backend) RegisterUser(user model.User, password string) model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user.ID == 0 {
		user.ID = b.id()
	}
	b.users[user.Email] = registeredUser{user: user, password: password}
	return user
}

// SeedCategory stores a category and returns it with its id.
func (b *Backend) SeedCategory(name string, t model.CategoryType) model.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := model.Category{ID: b.id(), Name: name, Type: t}
	b.categories[c.ID] = c
	return c
}

// SeedSubcategory stores a subcategory under categoryID.
func (b *Backend) SeedSubcategory(categoryID int, name string) model.Subcategory {
	b.mu.Lock()
	defer b.mu.Unlock()
	parent := b.categories[categoryID]
	s := model.Subcategory{ID: b.id(), Name: name, Category: &parent}
	b.subcategories[s.ID] = s
	return s
}

// SeedTransaction stores a record of its Kind. CreatedAt defaults to now.
func (b *Backend) SeedTransaction(tx model.Transaction) model.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tx.ID == 0 {
		tx.ID = b.id()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	b.transactions[tx.Kind][tx.ID] = tx
	return tx
}

// Categories returns the stored categories ordered by id.
func (b *Backend) Categories() []model.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortedValues(b.categories, func(c model.Category) int { return c.ID })
}

// Subcategories returns the stored subcategories ordered by id.
func (b *Backend) Subcategories() []model.Subcategory {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortedValues(b.subcategories, func(s model.Subcategory) int { return s.ID })
}

// Transactions returns the stored records of kind ordered by id.
func (b *Backend) Transactions(kind model.Kind) []model.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortedValues(b.transactions[kind], func(t model.Transaction) int { return t.ID })
}

func (b *Backend) id() int {
	b.nextID++
	return b.nextID
}

func sortedValues[T any](m map[int]T, key func(T) int) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, c T) int { return key(a) - key(c) })
	return out
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api")
		entry := r.Method + " " + path
		if r.URL.RawQuery != "" {
			entry += "?" + r.URL.RawQuery
		}

		b.mu.Lock()
		b.requests = append(b.requests, entry)
		f, failing := b.failures[r.Method+" "+path]
		b.mu.Unlock()

		if failing {
			w.WriteHeader(f.status)
			if f.message != "" {
				_ = json.NewEncoder(w).Encode(map[string]string{"message": f.message})
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		want := "Bearer " + b.Token
		b.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	u, ok := b.users[body.Email]
	token, expires := b.Token, b.ExpiresIn
	b.mu.Unlock()

	if !ok || u.password != body.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"type":      "Bearer",
		"expiresIn": expires,
		"message":   "login successful",
		"usuario":   u.user,
	})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Individual *model.Individual `json:"pessoaFisica"`
		Company    *model.Company    `json:"pessoaJuridica"`
		Email      string            `json:"email"`
		Password   string            `json:"senha"`
		Type       model.UserType    `json:"tipoUsuario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	_, exists := b.users[body.Email]
	b.mu.Unlock()
	if exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	u := b.RegisterUser(model.User{
		Email:      body.Email,
		Type:       body.Type,
		Individual: body.Individual,
		Company:    body.Company,
		CreatedAt:  time.Now().UTC().Format("2006-01-02T15:04:05"),
	}, body.Password)
	writeJSON(w, http.StatusCreated, u)
}

type categoryBody struct {
	Name string             `json:"nomeCategoria"`
	Type model.CategoryType `json:"tipoCategoria"`
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Categories())
}

func (b *Backend) listCategoriesByType(w http.ResponseWriter, r *http.Request) {
	t := model.CategoryType(r.PathValue("type"))
	out := []model.Category{}
	for _, c := range b.Categories() {
		if c.Type == t {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	c, found := b.categories[id]
	b.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	writeJSON(w, http.StatusCreated, b.SeedCategory(body.Name, body.Type))
}

func (b *Backend) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body categoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.categories[id]; !found {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	c := model.Category{ID: id, Name: body.Name, Type: body.Type}
	b.categories[id] = c
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.categories[id]; !found {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	for _, s := range b.subcategories {
		if s.ParentID() == id {
			writeError(w, http.StatusConflict, "category has subcategories")
			return
		}
	}
	delete(b.categories, id)
	w.WriteHeader(http.StatusNoContent)
}

type subcategoryBody struct {
	Name       string `json:"nomeSubcat"`
	CategoryID int    `json:"idCategoria"`
}

func (b *Backend) listSubcategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Subcategories())
}

func (b *Backend) listSubcategoriesByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out := []model.Subcategory{}
	for _, s := range b.Subcategories() {
		if s.ParentID() == id {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	s, found := b.subcategories[id]
	b.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "subcategory not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) createSubcategory(w http.ResponseWriter, r *http.Request) {
	var body subcategoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid subcategory")
		return
	}
	b.mu.Lock()
	_, found := b.categories[body.CategoryID]
	b.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusCreated, b.SeedSubcategory(body.CategoryID, body.Name))
}

func (b *Backend) updateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body subcategoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid subcategory")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, found := b.subcategories[id]
	if !found {
		writeError(w, http.StatusNotFound, "subcategory not found")
		return
	}
	s.Name = body.Name
	if parent, ok := b.categories[body.CategoryID]; ok {
		s.Category = &parent
	}
	b.subcategories[id] = s
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) deleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.subcategories[id]; !found {
		writeError(w, http.StatusNotFound, "subcategory not found")
		return
	}
	delete(b.subcategories, id)
	w.WriteHeader(http.StatusNoContent)
}

type transactionHandler struct {
	backend *Backend
	kind    model.Kind
}

type transactionBody struct {
	CategoryID    *int            `json:"idCategoria"`
	SubcategoryID *int            `json:"idSubcategoria"`
	Amount        decimal.Decimal `json:"valor"`
	Description   string          `json:"descricao"`
	EntryDate     string          `json:"dataEntrada"`
	DueDate       string          `json:"dataVencimento"`
	Recurring     int             `json:"recorrente"`
	Pending       int             `json:"pendente"`
}

func (h *transactionHandler) encode(t model.Transaction) map[string]any {
	out := map[string]any{
		"descricao":  t.Description,
		"valor":      json.Number(t.Amount.String()),
		"recorrente": boolInt(t.Recurring),
		"pendente":   boolInt(t.Pending),
		"criadoEm":   t.CreatedAt.Format("2006-01-02T15:04:05"),
	}
	if h.kind == model.KindIncome {
		out["idReceita"] = t.ID
		out["dataEntrada"] = t.Date
	} else {
		out["idDespesa"] = t.ID
		out["dataVencimento"] = t.Date
	}
	if t.Category != nil {
		out["categoria"] = t.Category
	}
	if t.Subcategory != nil {
		out["subcategoria"] = t.Subcategory
	}
	return out
}

func (h *transactionHandler) encodeAll(in []model.Transaction) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for _, t := range in {
		out = append(out, h.encode(t))
	}
	return out
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (h *transactionHandler) list(w http.ResponseWriter, r *http.Request) {
	rows := h.backend.Transactions(h.kind)
	q := r.URL.Query()
	if !q.Has("page") {
		writeJSON(w, http.StatusOK, h.encodeAll(rows))
		return
	}

	filtered := rows[:0:0]
	for _, t := range rows {
		if v := q.Get("dataInicio"); v != "" && t.Date < v {
			continue
		}
		if v := q.Get("dataFim"); v != "" && t.Date > v {
			continue
		}
		if v := q.Get("idCategoria"); v != "" && strconv.Itoa(t.CategoryID()) != v {
			continue
		}
		if v := q.Get("pendente"); v != "" && strconv.Itoa(boolInt(t.Pending)) != v {
			continue
		}
		filtered = append(filtered, t)
	}
	slices.SortStableFunc(filtered, func(a, c model.Transaction) int { return strings.Compare(c.Date, a.Date) })

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 20
	}
	start := min(page*size, len(filtered))
	end := min(start+size, len(filtered))

	writeJSON(w, http.StatusOK, map[string]any{
		"content":       h.encodeAll(filtered[start:end]),
		"number":        page,
		"size":          size,
		"totalPages":    (len(filtered) + size - 1) / size,
		"totalElements": len(filtered),
	})
}

func (h *transactionHandler) listByPeriod(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("dataInicio"), r.URL.Query().Get("dataFim")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "dataInicio and dataFim are required")
		return
	}
	out := []model.Transaction{}
	for _, t := range h.backend.Transactions(h.kind) {
		if t.Date >= from && t.Date <= to {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, h.encodeAll(out))
}

func (h *transactionHandler) listPending(w http.ResponseWriter, _ *http.Request) {
	out := []model.Transaction{}
	for _, t := range h.backend.Transactions(h.kind) {
		if t.Pending {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, h.encodeAll(out))
}

func (h *transactionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.backend.mu.Lock()
	t, found := h.backend.transactions[h.kind][id]
	h.backend.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", h.kind.Label()))
		return
	}
	writeJSON(w, http.StatusOK, h.encode(t))
}

func (h *transactionHandler) decode(r *http.Request, id int) (model.Transaction, error) {
	var body transactionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return model.Transaction{}, err
	}

	t := model.Transaction{
		ID:          id,
		Kind:        h.kind,
		Description: body.Description,
		Amount:      body.Amount,
		Recurring:   body.Recurring == 1,
		Pending:     body.Pending == 1,
		Date:        body.DueDate,
	}
	if h.kind == model.KindIncome {
		t.Date = body.EntryDate
	}

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	if body.CategoryID != nil {
		if c, ok := h.backend.categories[*body.CategoryID]; ok {
			t.Category = &c
		}
	}
	if body.SubcategoryID != nil {
		if s, ok := h.backend.subcategories[*body.SubcategoryID]; ok {
			t.Subcategory = &s
		}
	}
	return t, nil
}

func (h *transactionHandler) create(w http.ResponseWriter, r *http.Request) {
	t, err := h.decode(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusCreated, h.encode(h.backend.SeedTransaction(t)))
}

func (h *transactionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.backend.mu.Lock()
	existing, found := h.backend.transactions[h.kind][id]
	h.backend.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", h.kind.Label()))
		return
	}

	t, err := h.decode(r, id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	t.CreatedAt = existing.CreatedAt
	writeJSON(w, http.StatusOK, h.encode(h.backend.SeedTransaction(t)))
}

func (h *transactionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	if _, found := h.backend.transactions[h.kind][id]; !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", h.kind.Label()))
		return
	}
	delete(h.backend.transactions[h.kind], id)
	w.WriteHeader(http.StatusNoContent)
}
