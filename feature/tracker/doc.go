// Package tracker models the tracking platform's gear API: gear records,
// their devices, and the paginated pull plus create/update push endpoints.
package tracker
