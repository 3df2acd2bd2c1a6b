// ABOUTME: JSON document types returned by the API
// ABOUTME: Builds user, item and paginated collection documents with absolute URLs

package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/store"
	"github.com/2389/todoism/internal/todo"
)

// IndexDocument describes the API entry points.
type IndexDocument struct {
	APIVersion                   string `json:"api_version"`
	APIBaseURL                   string `json:"api_base_url"`
	CurrentUserURL               string `json:"current_user_url"`
	AuthenticationURL            string `json:"authentication_url"`
	ItemURL                      string `json:"item_url"`
	CurrentUserItemsURL          string `json:"current_user_items_url"`
	CurrentUserActiveItemsURL    string `json:"current_user_active_items_url"`
	CurrentUserCompletedItemsURL string `json:"current_user_completed_items_url"`
}

// TokenResponse is returned by the password grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserDocument describes the current user and their item counts.
type UserDocument struct {
	ID                 string `json:"id"`
	Self               string `json:"self"`
	Kind               string `json:"kind"`
	Username           string `json:"username"`
	AllItemsURL        string `json:"all_items_url"`
	ActiveItemsURL     string `json:"active_items_url"`
	CompletedItemsURL  string `json:"completed_items_url"`
	AllItemCount       int    `json:"all_item_count"`
	ActiveItemCount    int    `json:"active_item_count"`
	CompletedItemCount int    `json:"completed_item_count"`
}

// AuthorDocument is the author summary embedded in an item.
type AuthorDocument struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
}

// ItemDocument describes one item.
type ItemDocument struct {
	ID     int64          `json:"id"`
	Self   string         `json:"self"`
	Kind   string         `json:"kind"`
	Body   string         `json:"body"`
	Done   bool           `json:"done"`
	Author AuthorDocument `json:"author"`
}

// CollectionDocument is one page of items with navigation links.
// Prev and Next are null on the first and last page.
type CollectionDocument struct {
	Self  string         `json:"self"`
	Kind  string         `json:"kind"`
	Items []ItemDocument `json:"items"`
	Prev  *string        `json:"prev"`
	Last  string         `json:"last"`
	First string         `json:"first"`
	Next  *string        `json:"next"`
	Count int            `json:"count"`
}

// collectionPath returns the endpoint path of a filtered collection.
func collectionPath(filter todo.Filter) string {
	switch filter {
	case todo.FilterActive:
		return "/user/items/active"
	case todo.FilterCompleted:
		return "/user/items/completed"
	}
	return "/user/items"
}

func (a *API) indexDocument(r *http.Request) IndexDocument {
	base := a.baseURL(r)
	return IndexDocument{
		APIVersion:                   "1.0",
		APIBaseURL:                   base,
		CurrentUserURL:               base + "/user",
		AuthenticationURL:            base + "/oauth/token",
		ItemURL:                      base + "/user/items/{item_id}",
		CurrentUserItemsURL:          base + "/user/items{?page,per_page}",
		CurrentUserActiveItemsURL:    base + "/user/items/active{?page,per_page}",
		CurrentUserCompletedItemsURL: base + "/user/items/completed{?page,per_page}",
	}
}

func (a *API) userDocument(r *http.Request, user *auth.AuthContext, counts todo.Counts) UserDocument {
	base := a.baseURL(r)
	return UserDocument{
		ID:                 user.UserID,
		Self:               base + "/user",
		Kind:               "User",
		Username:           user.Username,
		AllItemsURL:        base + collectionPath(todo.FilterAll),
		ActiveItemsURL:     base + collectionPath(todo.FilterActive),
		CompletedItemsURL:  base + collectionPath(todo.FilterCompleted),
		AllItemCount:       counts.All,
		ActiveItemCount:    counts.Active,
		CompletedItemCount: counts.Completed,
	}
}

func (a *API) itemURL(r *http.Request, id int64) string {
	return a.baseURL(r) + "/user/items/" + strconv.FormatInt(id, 10)
}

// itemDocument renders item. The author is always the caller since
// items are only ever returned to their owner.
func (a *API) itemDocument(r *http.Request, item *store.Item, author *auth.AuthContext) ItemDocument {
	return ItemDocument{
		ID:   item.ID,
		Self: a.itemURL(r, item.ID),
		Kind: "Item",
		Body: item.Body,
		Done: item.Done,
		Author: AuthorDocument{
			ID:       item.AuthorID,
			URL:      a.baseURL(r) + "/user",
			Username: author.Username,
			Kind:     "User",
		},
	}
}

// collectionDocument renders page p of the collection at filter's endpoint.
// perPage is carried in the links only when the client asked for it.
func (a *API) collectionDocument(r *http.Request, filter todo.Filter, p *todo.Page, author *auth.AuthContext, explicitPerPage bool) CollectionDocument {
	endpoint := a.baseURL(r) + collectionPath(filter)
	link := func(page int) string {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		if explicitPerPage {
			q.Set("per_page", strconv.Itoa(p.PerPage))
		}
		return endpoint + "?" + q.Encode()
	}

	doc := CollectionDocument{
		Self:  link(p.Page),
		Kind:  "ItemCollection",
		Items: make([]ItemDocument, 0, len(p.Items)),
		Last:  link(max(p.Pages, 1)),
		First: link(1),
		Count: p.Total,
	}
	for _, item := range p.Items {
		doc.Items = append(doc.Items, a.itemDocument(r, item, author))
	}
	if p.HasPrev {
		prev := link(p.Page - 1)
		doc.Prev = &prev
	}
	if p.HasNext {
		next := link(p.Page + 1)
		doc.Next = &next
	}
	return doc
}
