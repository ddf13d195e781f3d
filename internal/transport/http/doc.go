// Package http implements the HTTP handlers of the rankpulse web service.
// Handlers stay thin: they parse and validate query parameters, delegate to
// the services layer and render either the JSON success envelope or an
// RFC 7807 problem document.
//
// # Routes
//
// DashboardHandler.Routes is mounted under /api:
//
//	GET  /files                    spreadsheets in the data directory
//	GET  /snapshot                 snapshot view (file, positions, q, min_ctr, sort, order, limit)
//	POST /snapshot/upload          snapshot view of an uploaded workbook
//	GET  /snapshot/opportunities   quick wins, high impressions with low clicks, high CTR
//	GET  /snapshot/export          filtered keyword table as CSV
//	GET  /history/trends           per-date trend points and available dates
//	GET  /history/trends/export    trend points as CSV
//	GET  /history/compare          period comparison and biggest movers
//	GET  /history/export           comparison rows as CSV
//
// # Response Format
//
// Successful responses use a fixed envelope:
//
//	{"status": "success", "data": {...}, "count": 3}
//
// count is only present for list endpoints. Errors go through
// errors.ErrorHandler, which maps data and history errors to status codes.
//
// CSV downloads are rendered into memory before any header is written, so a
// failed export still produces a problem document.
package http
