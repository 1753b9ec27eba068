package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "tweetcsv/pkg/errors"
)

type fakeFetcher struct {
	pages   []*Page
	err     error
	queries []url.Values
}

func (f *fakeFetcher) FetchPage(_ context.Context, q url.Values) (*Page, error) {
	f.queries = append(f.queries, q)
	if len(f.pages) == 0 {
		return nil, f.err
	}
	p := f.pages[0]
	f.pages = f.pages[1:]
	return p, nil
}

func post(id string) Post {
	return Post(`{"id":` + id + `,"id_str":"` + id + `"}`)
}

func TestSearchParamsValues(t *testing.T) {
	q := SearchParams{Query: "#golang", Count: 500, Since: "2018-07-01", TweetMode: "extended"}.Values()

	assert.Equal(t, "#golang", q.Get("q"))
	assert.Equal(t, "100", q.Get("count"))
	assert.Equal(t, "2018-07-01", q.Get("since"))
	assert.Equal(t, "extended", q.Get("tweet_mode"))
	assert.False(t, q.Has("result_type"))
}

func TestCursorFollowsNextResults(t *testing.T) {
	f := &fakeFetcher{pages: []*Page{
		{Statuses: []Post{post("3"), post("2")}, SearchMetadata: SearchMetadata{NextResults: "?max_id=1&q=%23golang&count=100&include_entities=1"}},
		{SearchMetadata: SearchMetadata{NextResults: "?max_id=1&q=%23golang"}},
		{Statuses: []Post{post("1")}},
	}}

	cur := NewCursor(f, SearchParams{Query: "#golang", Count: 100, Since: "2018-07-01", TweetMode: "extended"})
	var ids []string
	for {
		p, err := cur.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		ids = append(ids, p.ID())
	}

	assert.Equal(t, []string{"3", "2", "1"}, ids)
	assert.Equal(t, 3, cur.Pages())
	require.Len(t, f.queries, 3)
	assert.False(t, f.queries[0].Has("max_id"))
	assert.Equal(t, "1", f.queries[1].Get("max_id"))
	assert.Equal(t, "extended", f.queries[1].Get("tweet_mode"), "base params survive pagination")
	assert.Equal(t, "2018-07-01", f.queries[1].Get("since"))

	_, err := cur.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF, "cursor is not restartable")
}

func TestCursorErrorIsSticky(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{
		pages: []*Page{{Statuses: []Post{post("1")}, SearchMetadata: SearchMetadata{NextResults: "?max_id=0"}}},
		err:   boom,
	}
	cur := NewCursor(f, SearchParams{Query: "#x"})

	p, err := cur.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID())

	_, err = cur.Next(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = cur.Next(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.queries, 2)
}

func TestCursorBadNextResults(t *testing.T) {
	f := &fakeFetcher{pages: []*Page{{SearchMetadata: SearchMetadata{NextResults: "?max_id=%zz"}}}}
	cur := NewCursor(f, SearchParams{Query: "#x"})

	_, err := cur.Next(context.Background())
	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrorTypeParsing, apiErr.Type)
}

func TestClientSearchPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "#golang", r.URL.Query().Get("q"))
		assert.Equal(t, "extended", r.URL.Query().Get("tweet_mode"))

		var page Page
		if r.URL.Query().Get("max_id") == "" {
			page.Statuses = []Post{post("20"), post("19")}
			page.SearchMetadata.NextResults = "?max_id=18&q=%23golang&count=2&include_entities=1"
		} else {
			assert.Equal(t, "18", r.URL.Query().Get("max_id"))
			page.Statuses = []Post{post("18")}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, nil)
	cur := c.Search(SearchParams{Query: "#golang", Count: 2, TweetMode: "extended"})

	var ids []string
	for {
		p, err := cur.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{"20", "19", "18"}, ids)
}

func TestFetchPageInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statuses": [`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, nil)
	_, err := c.FetchPage(context.Background(), url.Values{})

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrorTypeParsing, apiErr.Type)
}

func TestPostID(t *testing.T) {
	assert.Equal(t, "123", Post(`{"id":123}`).ID())
	assert.Equal(t, "1013753016018980864", Post(`{"id":1013753016018980864,"id_str":"1013753016018980864"}`).ID())

	var page Page
	require.NoError(t, json.Unmarshal([]byte(`{"statuses":[{"id":1,"text":"a"}]}`), &page))
	require.Len(t, page.Statuses, 1)
	assert.JSONEq(t, `{"id":1,"text":"a"}`, string(page.Statuses[0]))
}
