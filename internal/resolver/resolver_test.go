package resolver_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"jellypot/internal/logging"
	"jellypot/internal/resolver"
	"jellypot/internal/services"
)

type fakeAPI struct {
	mu       sync.Mutex
	userID   string
	items    map[string]resolver.Item
	nextUp   map[string]resolver.ItemList
	children map[string]resolver.ItemList
	err      error
	calls    []string
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) CurrentUserID(context.Context) (string, error) {
	f.record("user")
	return f.userID, nil
}

func (f *fakeAPI) GetItem(_ context.Context, userID, itemID string) (resolver.Item, error) {
	f.record("item:" + userID + ":" + itemID)
	if f.err != nil {
		return resolver.Item{}, f.err
	}
	item, ok := f.items[itemID]
	if !ok {
		return resolver.Item{ID: itemID, Type: "Movie"}, nil
	}
	return item, nil
}

func (f *fakeAPI) NextUp(_ context.Context, seriesID, userID string) (resolver.ItemList, error) {
	f.record("nextup:" + seriesID + ":" + userID)
	return f.nextUp[seriesID], nil
}

func (f *fakeAPI) Children(_ context.Context, userID, parentID string) (resolver.ItemList, error) {
	f.record("children:" + userID + ":" + parentID)
	return f.children[parentID], nil
}

func list(ids ...string) resolver.ItemList {
	out := resolver.ItemList{}
	for _, id := range ids {
		out.Items = append(out.Items, resolver.Item{ID: id})
	}
	return out
}

func newFake() *fakeAPI {
	return &fakeAPI{
		userID: "u1",
		items: map[string]resolver.Item{
			"S":  {ID: "S", Type: "Series"},
			"SN": {ID: "SN", Type: "Season"},
			"BX": {ID: "BX", Type: "boxset"},
			"M":  {ID: "M", Type: "Movie"},
			"ES": {ID: "ES", Type: "Series"},
		},
		nextUp:   map[string]resolver.ItemList{"S": list("E1", "E2")},
		children: map[string]resolver.ItemList{"SN": list("C1", "C2", "C3"), "BX": list("B1")},
	}
}

func TestParseItemRef(t *testing.T) {
	cases := []struct {
		fragment string
		want     resolver.ItemRef
		wantErr  bool
	}{
		{fragment: "#!/details?id=abc123&serverId=f00", want: "abc123"},
		{fragment: "#/details?id=9f8e7d", want: "9f8e7d"},
		{fragment: "#!/details?serverId=f00", wantErr: true},
		{fragment: "#!/details?id=&serverId=f00", wantErr: true},
		{fragment: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := resolver.ParseItemRef(tc.fragment)
		if tc.wantErr {
			if !errors.Is(err, resolver.ErrInvalidReference) || !errors.Is(err, services.ErrValidation) {
				t.Fatalf("%q: expected invalid reference, got %v", tc.fragment, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.fragment, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.fragment, tc.want, got)
		}
	}
}

func TestResolveRules(t *testing.T) {
	cases := []struct {
		name string
		ref  resolver.ItemRef
		want string
	}{
		{name: "series uses first next up", ref: "S", want: "E1"},
		{name: "season uses first child", ref: "SN", want: "C1"},
		{name: "boxset type compared case-insensitively", ref: "BX", want: "B1"},
		{name: "movie resolves to itself", ref: "M", want: "M"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := resolver.New(newFake(), logging.NewNop())
			res, err := r.Resolve(context.Background(), tc.ref)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.ID != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, res.ID)
			}
			if res.Fallback {
				t.Fatal("did not expect fallback")
			}
		})
	}
}

func TestResolveEmptyNextUpFallsBack(t *testing.T) {
	api := newFake()
	r := resolver.New(api, logging.NewNop())

	res, err := r.Resolve(context.Background(), "ES")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ID != "ES" || !res.Fallback {
		t.Fatalf("expected fallback to ES, got %+v", res)
	}
	if res.SourceType != "Series" {
		t.Fatalf("unexpected source type %q", res.SourceType)
	}
}

func TestResolvePassesUserAndItemIDs(t *testing.T) {
	api := newFake()
	r := resolver.New(api, logging.NewNop())
	if _, err := r.Resolve(context.Background(), "S"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"user", "item:u1:S", "nextup:S:u1"}
	if len(api.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, api.calls)
	}
	for i := range want {
		if api.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, api.calls)
		}
	}
}

func TestResolveWrapsUpstreamFailure(t *testing.T) {
	api := newFake()
	api.err = errors.New("HTTP 500")
	r := resolver.New(api, logging.NewNop())

	_, err := r.Resolve(context.Background(), "S")
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !errors.Is(err, api.err) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestResolveFragmentRejectsMissingID(t *testing.T) {
	api := newFake()
	r := resolver.New(api, logging.NewNop())
	if _, err := r.ResolveFragment(context.Background(), "#!/home"); !errors.Is(err, resolver.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no host calls, got %v", api.calls)
	}
}

func TestConcurrentResolutionsAreIndependent(t *testing.T) {
	r := resolver.New(newFake(), logging.NewNop())
	refs := map[resolver.ItemRef]string{"S": "E1", "SN": "C1", "M": "M", "BX": "B1"}

	var wg sync.WaitGroup
	errs := make(chan error, len(refs)*10)
	for i := 0; i < 10; i++ {
		for ref, want := range refs {
			wg.Add(1)
			go func(ref resolver.ItemRef, want string) {
				defer wg.Done()
				res, err := r.Resolve(context.Background(), ref)
				if err != nil {
					errs <- err
					return
				}
				if res.ID != want {
					errs <- errors.New(string(ref) + " resolved to " + res.ID)
				}
			}(ref, want)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
