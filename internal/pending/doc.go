// Package pending correlates outbound request envelopes to the inbound
// responses that answer them.
//
// Each registered id is resolved or rejected exactly once: the entry is
// removed from the table before its caller is signalled, so a duplicate
// response, a late deadline timer, or a disconnect sweep can never fire the
// same entry twice.
package pending
