package lookup

import "context"

// Mock answers every search with canned titles. Enabled by USE_MOCK_LOOKUP.
type Mock struct{}

func (Mock) Search(_ context.Context, c Criteria, kind Kind) []string {
	if _, _, ok := c.param(); !ok {
		return []string{}
	}
	if kind == KindSeries {
		return []string{"Во все тяжкие", "Шерлок", "Тьма"}
	}
	return []string{"Брат", "Иван Васильевич меняет профессию", "Интерстеллар"}
}
