// Package domain models police.uk street-level crime records and Open-Meteo
// daily weather observations for a fixed area over a fixed window of months.
//
// # Data Sources
//
// Crime records come from the data.police.uk "crimes-street/all-crime"
// endpoint, queried once per month for a center point:
//
//	GET /api/crimes-street/all-crime?lat=51.4545&lng=-2.5879&date=2010-01
//
// The response is a JSON array of flat objects. Most values are scalars; the
// "location" value is nested:
//
//	{"latitude": "51.4547", "street": {"id": 883407, "name": "On or near Park Street"}, "longitude": "-2.5981"}
//
// Latitude and longitude are encoded as strings by the API. Both string and
// numeric encodings are accepted by [ParseLocation].
//
// Weather observations come from the Open-Meteo archive API, queried once per
// month with start_date set to the first day of the month and end_date set to
// the day before the first day of the next month. The "daily" block holds
// parallel arrays indexed by day offset; nulls mark days without a value.
//
// # Month Tokens
//
// A month is rendered "YYYY-MM". [Months] yields every month from start to
// end inclusive, in ascending order, rolling December into January of the
// following year.
//
// # Cleaning
//
// Monthly crime files are concatenated into a [Table] and passed through
// [CleanCrimeTable]:
//
//	whitespace-only and empty cells  →  missing
//	rows with every cell missing     →  dropped
//	location                         →  lat, lng, street_name (parsed once per row)
//	month                            →  year, month_num
//	category                         →  category_code (first-seen dense code)
//	lat, lng                         →  distance_miles, in_radius
//	missing lat, lng, category, month →  dropped
//
// Category codes are assigned in first-seen order over the concatenated table,
// before the required-field filter, so codes are not stable across inputs.
package domain
