// Package ui holds the state behind the site's interactive widgets. Each
// widget is constructed by a page controller for one request and rendered by
// the HTML templates; none of them share state.
package ui
