package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomod-backend/internal/models"
)

func TestGetPostBySlug(t *testing.T) {
	e := setupServer(t)
	createAdmin(t, "admin@example.com", "correct horse battery")
	cookie := loginAs(t, e, "admin@example.com", "correct horse battery")

	rec := postJSON(e, "/api/posts", `{"slug":"hello-world","title":"Hello","content":"First post."}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = getJSON(e, "/api/posts/slug/hello-world", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, models.PostStatusDraft, post.Status)

	rec = getJSON(e, "/api/posts/slug/no-such-post", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = getJSON(e, "/api/posts/slug/Not_A_Slug", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCategory_RefusedWhileReferenced(t *testing.T) {
	e := setupServer(t)
	createAdmin(t, "admin@example.com", "correct horse battery")
	cookie := loginAs(t, e, "admin@example.com", "correct horse battery")

	rec := postJSON(e, "/api/categories", `{"slug":"news","name":"News"}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	rec = postJSON(e, "/api/posts",
		fmt.Sprintf(`{"slug":"in-the-news","title":"News item","content":"x","category_id":%d}`, cat.ID), cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "referenced by posts")

	// Once the post is gone the category can be deleted.
	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}
