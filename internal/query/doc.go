// Package query is the read-only aggregation surface for presentation
// layers: windowed sample retrieval, audit log listing, and
// notification listing. It never mutates state; callers that need live
// updates poll it.
package query
