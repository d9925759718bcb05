package vault

// toViews guarantees a non-nil slice for JSON encoding. The storage key is
// never serialized; retrieval goes through signed URLs only.
func toViews(docs []DocumentView) []DocumentView {
	if docs == nil {
		return []DocumentView{}
	}
	return docs
}
