package core

// FeedState is the lifecycle state of a single feed instance.
//
// INIT -> LOADING -> (EMPTY | ERROR | POPULATED). EMPTY and ERROR stay put
// until the page session is rebuilt; POPULATED absorbs every "load more".
type FeedState string

const (
	FeedStateInit      FeedState = "init"
	FeedStateLoading   FeedState = "loading"
	FeedStateEmpty     FeedState = "empty"
	FeedStateError     FeedState = "error"
	FeedStatePopulated FeedState = "populated"
)

// Terminal reports whether no further transition happens without a reload.
func (s FeedState) Terminal() bool {
	return s == FeedStateEmpty || s == FeedStateError
}
