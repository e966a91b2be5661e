package ptr

func Int64(v int64) *int64 { return &v }

// Int64FromFloat converts the loosely typed numbers found in JSON documents,
// dropping negative values.
func Int64FromFloat(v *float64) *int64 {
	if v == nil || *v < 0 {
		return nil
	}

	return Int64(int64(*v))
}
