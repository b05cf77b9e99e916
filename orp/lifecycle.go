package orp

import "github.com/wCloudRain/orp/arraystore"

// tempArrays tracks the arrays one Permute call has created but not yet
// deleted, so an error partway through can still satisfy spec.md §5's
// resource-model requirement: every create_array is matched by exactly one
// delete_array on every exit path, including error aborts. Bucket, Melbourne
// and Waksman each build one per Permute call and defer an abort keyed on
// the call's own named error return.
type tempArrays struct {
	svc  arraystore.Service
	live map[Name]bool
}

func newTempArrays(svc arraystore.Service) *tempArrays {
	return &tempArrays{svc: svc, live: make(map[Name]bool)}
}

// create allocates name via the backing Service and tracks it.
func (t *tempArrays) create(name Name, length uint32) error {
	if err := t.svc.Create(name, length); err != nil {
		return err
	}
	t.live[name] = true
	return nil
}

// delete releases name through the backing Service and stops tracking it.
// Safe to call on a name this tracker never created (e.g. a caller-owned
// input array an algorithm consumes) — it just deletes.
func (t *tempArrays) delete(name Name) error {
	if err := t.svc.Delete(name); err != nil {
		return err
	}
	delete(t.live, name)
	return nil
}

// release stops tracking name without deleting it, for the one array a
// successful call hands back to its caller as the permuted output.
func (t *tempArrays) release(name Name) {
	delete(t.live, name)
}

// abort deletes every array still tracked, best-effort. Called on an error
// exit path that already has the real error to report, so individual
// delete failures here are not surfaced.
func (t *tempArrays) abort() {
	for name := range t.live {
		_ = t.svc.Delete(name)
	}
	t.live = nil
}
