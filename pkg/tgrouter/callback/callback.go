// Package callback encodes inline keyboard callback data as
// "<query>_<arg>_<arg>".
package callback

import "strings"

const sep = "_"

func Data(query string, args ...string) string {
	return strings.Join(append([]string{query}, args...), sep)
}

// Query returns the routing key of data.
func Query(data string) string {
	q, _, _ := strings.Cut(data, sep)
	return q
}

// Args returns everything after the query. The last argument keeps any
// separators it contains.
func Args(data string, n int) []string {
	_, rest, ok := strings.Cut(data, sep)
	if !ok || n <= 0 {
		return nil
	}
	return strings.SplitN(rest, sep, n)
}
