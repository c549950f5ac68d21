// Package model holds the Polymarket Gamma records the dashboard consumes.
//
// Gamma is loose about types: outcome lists arrive as JSON strings that
// contain arrays, numeric fields arrive as either strings or numbers, and
// "markets" is occasionally not an array at all. The types here absorb those
// variations at decode time so a single odd record never fails a whole page.
package model
