package civil

// epochDays is an independent day-count formula used to cross-check
// DaysFromCivil. It works on unsigned 32-bit arithmetic and is exact for
// years >= -4799.
func epochDays(year, month, day int) int {
	const yearBase = 4800 // multiple of 400 below the smallest supported year

	m := uint32(month)
	mAdj := m - 3 // March-based month, wraps for January and February
	var carry uint32
	if mAdj > m {
		carry = 1
	}
	adjust := carry * 12
	yAdj := uint32(year+yearBase) - carry
	monthDays := ((mAdj+adjust)*62719 + 769) / 2048
	leapDays := yAdj/4 - yAdj/100 + yAdj/400
	return int(int32(yAdj*365 + leapDays + monthDays + uint32(day-1) - 2472632))
}
