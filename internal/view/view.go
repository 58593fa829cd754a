// Package view derives the ordered, filtered host list the dashboard draws.
package view

import (
	"slices"
	"strconv"
	"strings"

	"github.com/Rival420/Spynet2/internal/models"
)

// Project returns the hosts of table that pass filters, in dotted-quad
// order. It neither mutates nor retains table.
func Project(table models.HostTable, filters models.FilterState) []models.HostRecord {
	out := make([]models.HostRecord, 0, len(table))

	for _, rec := range table {
		if Hidden(rec, filters) {
			continue
		}

		out = append(out, rec.Clone())
	}

	slices.SortFunc(out, func(a, b models.HostRecord) int {
		return CompareAddresses(a.Address, b.Address)
	})

	return out
}

// Hidden reports whether filters exclude rec. Hosts with unknown status are
// never hidden by HideOffline.
func Hidden(rec models.HostRecord, filters models.FilterState) bool {
	if filters.HideOffline && rec.Status == models.StatusOffline {
		return true
	}

	return filters.HideDHCP && rec.IsDHCP
}

// CompareAddresses orders addresses by their four dot-separated octets
// compared numerically. Missing or non-numeric octets count as zero, and
// distinct strings that tie numerically fall back to string order so the
// ordering stays total.
func CompareAddresses(a, b string) int {
	oa, ob := octets(a), octets(b)

	for i := range oa {
		if oa[i] != ob[i] {
			if oa[i] < ob[i] {
				return -1
			}

			return 1
		}
	}

	return strings.Compare(a, b)
}

func octets(addr string) [4]int {
	var out [4]int

	for i, part := range strings.SplitN(addr, ".", 4) {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}

		out[i] = n
	}

	return out
}
