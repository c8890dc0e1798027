package monday

import (
	"fmt"
	"strings"
)

// boardItemsQuery builds the paginated items query for one board. Typed
// fragments pull the structured payloads (status label, parsed number,
// date and time parts) that the generic text field flattens away.
func boardItemsQuery(boardID string, cursor string, limit int) string {
	cursorArg := ""
	if cursor != "" {
		cursorArg = fmt.Sprintf(", cursor: %q", cursor)
	}

	return fmt.Sprintf(`
	query {
		boards(ids: [%s]) {
			id
			name
			columns {
				id
				title
				type
				settings_str
			}
			items_page(limit: %d%s) {
				cursor
				items {
					id
					name
					created_at
					updated_at
					group {
						id
						title
					}
					column_values {
						id
						type
						text
						value
						... on StatusValue {
							label
							index
						}
						... on NumbersValue {
							number
						}
						... on DateValue {
							date
							time
						}
						... on PersonValue {
							person_id
							text
						}
						... on DropdownValue {
							text
						}
						... on TextValue {
							text
						}
						... on LinkValue {
							url
							text
						}
						... on EmailValue {
							email
							text
						}
						... on PhoneValue {
							phone
							text
						}
					}
				}
			}
		}
	}`, boardID, limit, cursorArg)
}

// boardMetadataQuery fetches a board's columns, groups and owners.
func boardMetadataQuery(boardID string) string {
	return fmt.Sprintf(`
	query {
		boards(ids: [%s]) {
			id
			name
			description
			state
			board_kind
			columns {
				id
				title
				type
				settings_str
			}
			groups {
				id
				title
				color
			}
			owners {
				id
				name
				email
			}
		}
	}`, boardID)
}

// multipleBoardsQuery fetches summary metadata for several boards at once.
func multipleBoardsQuery(boardIDs []string) string {
	return fmt.Sprintf(`
	query {
		boards(ids: [%s]) {
			id
			name
			items_count
			columns {
				id
				title
				type
			}
		}
	}`, strings.Join(boardIDs, ", "))
}
