package video

import (
	"math"
	"regexp"
	"strconv"
)

var rangePattern = regexp.MustCompile(`^bytes=(\d+)-(\d*)`)

// RangeRequest is an inclusive byte span with Start <= End < file size.
type RangeRequest struct {
	Start uint64
	End   uint64
}

func (r RangeRequest) Length() uint64 {
	return r.End - r.Start + 1
}

// ParseRange resolves a Range header against fileSize, which must be
// positive. A missing or unrecognized header selects the whole file. Values
// outside the file are clamped into it rather than rejected.
func ParseRange(header string, fileSize uint64) RangeRequest {
	last := fileSize - 1
	full := RangeRequest{Start: 0, End: last}
	if header == "" {
		return full
	}
	m := rangePattern.FindStringSubmatch(header)
	if m == nil {
		return full
	}

	start := parseBound(m[1])
	end := last
	if m[2] != "" {
		end = parseBound(m[2])
	}

	start = min(start, last)
	end = max(min(end, last), start)
	return RangeRequest{Start: start, End: end}
}

// parseBound reads a run of digits; values too large for uint64 saturate.
func parseBound(digits string) uint64 {
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return math.MaxUint64
	}
	return n
}
