package ledger

import "time"

// Los días calendario se representan como time.Time a medianoche UTC (igual que las
// columnas DATE leídas por pgx). La zona horaria del negocio decide a qué día pertenece
// cada instante.

// DayOf devuelve el día calendario, en loc, al que pertenece t.
func DayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDay trunca una fecha ya expresada como día calendario.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayStart devuelve el instante en que comienza day en loc.
func DayStart(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayEnd devuelve el instante en que comienza el día siguiente a day en loc (límite exclusivo).
func DayEnd(day time.Time, loc *time.Location) time.Time {
	return DayStart(day.AddDate(0, 0, 1), loc)
}

// DaysBetween cantidad de días calendario en [from, to], inclusive. Cero si from > to.
func DaysBetween(from, to time.Time) int {
	from, to = NormalizeDay(from), NormalizeDay(to)
	if from.After(to) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
