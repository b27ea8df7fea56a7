package util

/*
FilterMap returns values returned by the mapper for the elements of s
accepted by the filter, in the order of s. Mapper is not called for the
elements filter rejects.
*/
func FilterMap[S ~[]E, E any, V any](s S, filter func(E) bool, mapper func(E) V) []V {
	var r []V
	for _, v := range s {
		if filter(v) {
			r = append(r, mapper(v))
		}
	}
	return r
}
