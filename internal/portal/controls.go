// Package portal drives the third-party claims portal: session gates,
// row-scoped filtering, per-patient claim processing, and the top-level
// run loop. All UI access goes through the resolver's fallback chains so
// a shifted portal layout is a data change here, not new control flow.
package portal

import (
	"claimpilot/internal/driver"
	"claimpilot/internal/resolver"
)

// Listing grid selectors shared by several controls. The grid renders one
// filter input per column directly under the column header, and the
// filter inputs are visually identical, hence the header verification.
const (
	selListingRow    = "table.claims-grid tbody tr"
	selColumnFilter  = "table.claims-grid thead input.col-filter"
	selColumnHeader  = "table.claims-grid thead th.col-title"
	selDialogOption  = "div.select-dropdown li.option"
	selDiagnosisItem = "div.code-search li.result"
)

func usernameField() resolver.Control {
	return resolver.Control{
		Name: "username field",
		Strategies: []resolver.Strategy{
			{Name: "by id", Locate: driver.Descriptor{Selector: "#username"}},
			{Name: "by name attr", Locate: driver.Descriptor{Selector: "input[name='username']"}},
			{Name: "first text input on login form", Locate: driver.Descriptor{Selector: "form.login input[type='text']"}},
		},
	}
}

func passwordField() resolver.Control {
	return resolver.Control{
		Name: "password field",
		Strategies: []resolver.Strategy{
			{Name: "by id", Locate: driver.Descriptor{Selector: "#password"}},
			{Name: "by type", Locate: driver.Descriptor{Selector: "form.login input[type='password']"}},
		},
	}
}

func loginButton() resolver.Control {
	return resolver.Control{
		Name: "login button",
		Strategies: []resolver.Strategy{
			{Name: "submit button", Locate: driver.Descriptor{Selector: "form.login button[type='submit']"}},
			{
				Name:   "button by text",
				Locate: driver.Descriptor{Selector: "button", Text: "Log In"},
				Verify: resolver.VerifyTextContains("log in"),
			},
		},
	}
}

func claimsTab() resolver.Control {
	return resolver.Control{
		Name: "claims tab",
		Strategies: []resolver.Strategy{
			{Name: "nav tab", Locate: driver.Descriptor{Selector: "nav a[data-tab='claims']"}},
			{
				Name:   "tab by text",
				Locate: driver.Descriptor{Selector: "nav a", Text: "Claims"},
				Verify: resolver.VerifyTextContains("claims"),
			},
		},
	}
}

// globalFilter is one of the two run-scoped listing filters. Both render
// as the same dropdown widget, so each carries a label verification.
func globalFilter(label string) resolver.Control {
	return resolver.Control{
		Name: label + " filter",
		Strategies: []resolver.Strategy{
			{
				Name:   "labeled dropdown",
				Locate: driver.Descriptor{Selector: "div.global-filters div.select", Text: label},
				Verify: resolver.VerifyTextContains(label),
			},
			{Name: "by data attr", Locate: driver.Descriptor{Selector: "div.global-filters div.select[data-filter='" + label + "']"}},
		},
	}
}

func dropdownOption(value string) resolver.Control {
	return resolver.Control{
		Name: "option " + value,
		Strategies: []resolver.Strategy{
			{
				Name:   "option by text",
				Locate: driver.Descriptor{Selector: selDialogOption, Text: value},
				Verify: resolver.VerifyTextContains(value),
			},
		},
	}
}

// firstDropdownOption is the degraded fallback when the exact labeled
// option is missing from the enumeration.
func firstDropdownOption() resolver.Control {
	return resolver.Control{
		Name: "first available option",
		Strategies: []resolver.Strategy{
			{Name: "first option", Locate: driver.Descriptor{Selector: selDialogOption}},
		},
	}
}

// columnFilter locates the filter input for a named grid column. The
// filter inputs are indistinguishable from each other, so every strategy
// verifies the header directly above before the handle is accepted.
func columnFilter(column string, position int) resolver.Control {
	headerAt := driver.Descriptor{Selector: selColumnHeader, Index: position}
	return resolver.Control{
		Name: column + " column filter",
		Strategies: []resolver.Strategy{
			{
				Name:   "by data-column attr",
				Locate: driver.Descriptor{Selector: "table.claims-grid thead input[data-column='" + column + "']"},
			},
			{
				Name:   "by column position",
				Locate: driver.Descriptor{Selector: selColumnFilter, Index: position},
				Verify: resolver.VerifyHeaderAbove(headerAt, column),
			},
		},
	}
}

func listingEntry(index int) resolver.Control {
	return resolver.Control{
		Name: "listing entry",
		Strategies: []resolver.Strategy{
			{Name: "row at position", Locate: driver.Descriptor{Selector: selListingRow, Index: index}},
		},
	}
}

func editFormButton() resolver.Control {
	return resolver.Control{
		Name: "edit form button",
		Strategies: []resolver.Strategy{
			{Name: "by id", Locate: driver.Descriptor{Selector: "#edit-claim"}},
			{
				Name:   "toolbar button by text",
				Locate: driver.Descriptor{Selector: "div.record-toolbar button", Text: "Edit"},
				Verify: resolver.VerifyTextContains("edit"),
			},
		},
	}
}

func serviceDateField() resolver.Control {
	return resolver.Control{
		Name: "service date field",
		Strategies: []resolver.Strategy{
			{Name: "by name attr", Locate: driver.Descriptor{Selector: "input[name='service_date']"}},
			{Name: "form date input", Locate: driver.Descriptor{Selector: "form.claim-edit input.date-field"}},
		},
	}
}

func diagnosisSearchField() resolver.Control {
	return resolver.Control{
		Name: "diagnosis search field",
		Strategies: []resolver.Strategy{
			{Name: "by name attr", Locate: driver.Descriptor{Selector: "input[name='diagnosis_code']"}},
			{Name: "code search box", Locate: driver.Descriptor{Selector: "div.code-search input"}},
		},
	}
}

func billingClassificationField() resolver.Control {
	return resolver.Control{
		Name: "billing classification field",
		Strategies: []resolver.Strategy{
			{Name: "by name attr", Locate: driver.Descriptor{Selector: "div.select[data-name='billing_classification']"}},
			{
				Name:   "labeled select",
				Locate: driver.Descriptor{Selector: "form.claim-edit div.select", Text: "Billing"},
				Verify: resolver.VerifyTextContains("billing"),
			},
		},
	}
}

func saveButton() resolver.Control {
	return resolver.Control{
		Name: "save button",
		Strategies: []resolver.Strategy{
			{Name: "by id", Locate: driver.Descriptor{Selector: "#save-claim"}},
			{
				Name:   "form button by text",
				Locate: driver.Descriptor{Selector: "form.claim-edit button", Text: "Save"},
				Verify: resolver.VerifyTextContains("save"),
			},
		},
	}
}

func saveConfirmation() resolver.Control {
	return resolver.Control{
		Name: "save confirmation",
		Strategies: []resolver.Strategy{
			{Name: "toast", Locate: driver.Descriptor{Selector: "div.toast-success"}},
			{
				Name:   "banner by text",
				Locate: driver.Descriptor{Selector: "div.banner", Text: "saved"},
				Verify: resolver.VerifyTextContains("saved"),
			},
		},
	}
}

func backToListing() resolver.Control {
	return resolver.Control{
		Name: "back to listing",
		Strategies: []resolver.Strategy{
			{Name: "by id", Locate: driver.Descriptor{Selector: "#back-to-listing"}},
			{
				Name:   "breadcrumb by text",
				Locate: driver.Descriptor{Selector: "nav.breadcrumb a", Text: "Listing"},
				Verify: resolver.VerifyTextContains("listing"),
			},
		},
	}
}
