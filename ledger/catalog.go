package ledger

import "github.com/shopspring/decimal"

type catalogEntry struct {
	name  string
	value int64
}

// The standard board: 22 streets, 4 railroads, 2 utilities.
var propertyCatalog = []catalogEntry{
	{"Mediterranean Avenue", 60},
	{"Baltic Avenue", 60},
	{"Oriental Avenue", 100},
	{"Vermont Avenue", 100},
	{"Connecticut Avenue", 120},
	{"St. Charles Place", 140},
	{"States Avenue", 140},
	{"Virginia Avenue", 160},
	{"St. James Place", 180},
	{"Tennessee Avenue", 180},
	{"New York Avenue", 200},
	{"Kentucky Avenue", 220},
	{"Indiana Avenue", 220},
	{"Illinois Avenue", 240},
	{"Atlantic Avenue", 260},
	{"Ventnor Avenue", 260},
	{"Marvin Gardens", 280},
	{"Pacific Avenue", 300},
	{"North Carolina Avenue", 300},
	{"Pennsylvania Avenue", 320},
	{"Park Place", 350},
	{"Boardwalk", 400},
	{"Reading Railroad", 200},
	{"Pennsylvania Railroad", 200},
	{"B. & O. Railroad", 200},
	{"Short Line", 200},
	{"Electric Company", 150},
	{"Water Works", 150},
}

func (c catalogEntry) decimalValue() decimal.Decimal {
	return decimal.NewFromInt(c.value)
}
