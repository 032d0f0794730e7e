package series

// ChangeSuffix is appended to a field name to form its percent-change field.
const ChangeSuffix = "_change"

// ChangeField returns the name PercentChange writes for field.
func ChangeField(field string) string {
	return field + ChangeSuffix
}

// PercentChange returns a copy of s where every row but the first carries
// ChangeField(field) = (cur - prev) / prev against the row before it.
//
// A missing value reads as zero. Division by zero is not special-cased and
// yields ±Inf or NaN; formatters must guard. s itself is left untouched.
func PercentChange(s Series, field string) Series {
	out := s.Clone()
	name := ChangeField(field)
	for i := 1; i < len(out); i++ {
		prev, _ := s[i-1].Float(field)
		cur, _ := s[i].Float(field)
		out[i][name] = (cur - prev) / prev
	}
	return out
}
