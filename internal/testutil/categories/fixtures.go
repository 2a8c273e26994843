package categories

// Fixture represents a predefined set of categories for testing.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Categories returns the category names included in this fixture.
	Categories() []CategoryName
}

type fixture struct {
	name       string
	categories []CategoryName
}

func (f *fixture) Name() string               { return f.name }
func (f *fixture) Categories() []CategoryName { return f.categories }

// Predefined fixtures for common test scenarios.
var (
	// FixtureMinimal has one income and one expense category.
	FixtureMinimal = &fixture{
		name:       "Minimal",
		categories: []CategoryName{CategorySalary, CategoryGroceries},
	}

	// FixtureHousehold covers a typical monthly budget.
	FixtureHousehold = &fixture{
		name: "Household",
		categories: []CategoryName{
			CategorySalary,
			CategoryInterest,
			CategoryRefunds,
			CategoryGroceries,
			CategoryRent,
			CategoryUtilities,
			CategoryDining,
		},
	}
)
