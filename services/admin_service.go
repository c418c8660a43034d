package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blog/models"
	"blog/utils"

	"gorm.io/gorm"
)

// AdminPerPage is the page size of admin change lists.
const AdminPerPage = 25

type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnBool
	ColumnTime
)

type AdminColumn struct {
	Label string
	Expr  string
	Kind  ColumnKind
}

type AdminChoice struct {
	Value string
	Label string
}

// AdminFilter is a sidebar filter. Choices are either fixed or loaded with
// ChoicesSQL, which must select a value and a label column.
type AdminFilter struct {
	Param      string
	Label      string
	Expr       string
	Kind       ColumnKind
	Numeric    bool
	Choices    []AdminChoice
	ChoicesSQL string
}

// ModelAdmin declares how one entity is listed, searched and filtered in the
// admin. The generic list view and AdminService.List consume it.
type ModelAdmin struct {
	Slug         string
	Name         string
	Table        string
	Joins        []string
	Scope        string
	Columns      []AdminColumn
	SearchFields []string
	Filters      []AdminFilter
	Ordering     []string
	// EditURL, when set, formats a row id into a link target.
	EditURL   string
	Creatable bool
	Deletable bool
	// Moderated marks entities with an is_active toggle.
	Moderated bool
}

var yesNo = []AdminChoice{{Value: "1", Label: "Yes"}, {Value: "0", Label: "No"}}

// DefaultModelAdmins is the admin registry, in index order.
func DefaultModelAdmins() []*ModelAdmin {
	return []*ModelAdmin{
		{
			Slug:  "posts",
			Name:  "Posts",
			Table: "posts",
			Joins: []string{
				"LEFT JOIN users ON users.id = posts.user_id",
				"LEFT JOIN categories ON categories.id = posts.category_id",
			},
			Columns: []AdminColumn{
				{Label: "Title", Expr: "posts.title"},
				{Label: "Author", Expr: "users.username"},
				{Label: "Category", Expr: "categories.name"},
				{Label: "Status", Expr: "posts.status"},
				{Label: "Created at", Expr: "posts.created_at", Kind: ColumnTime},
				{Label: "Published at", Expr: "posts.published_at", Kind: ColumnTime},
			},
			SearchFields: []string{"posts.title", "posts.content"},
			Filters: []AdminFilter{
				{Param: "status", Label: "Status", Expr: "posts.status", Choices: []AdminChoice{
					{Value: string(models.StatusDraft), Label: models.StatusDraft.Label()},
					{Value: string(models.StatusPublished), Label: models.StatusPublished.Label()},
				}},
				{Param: "category", Label: "Category", Expr: "posts.category_id", Numeric: true,
					ChoicesSQL: "SELECT id, name FROM categories ORDER BY name"},
			},
			Ordering:  []string{"posts.created_at DESC", "posts.id DESC"},
			EditURL:   "/post/%d/edit/",
			Deletable: true,
		},
		{
			Slug:  "comments",
			Name:  "Comments",
			Table: "comments",
			Joins: []string{
				"LEFT JOIN users ON users.id = comments.user_id",
				"LEFT JOIN posts ON posts.id = comments.post_id",
			},
			Columns: []AdminColumn{
				{Label: "Post", Expr: "posts.title"},
				{Label: "Author", Expr: "users.username"},
				{Label: "Content", Expr: "comments.content"},
				{Label: "Created at", Expr: "comments.created_at", Kind: ColumnTime},
				{Label: "Active", Expr: "comments.is_active", Kind: ColumnBool},
			},
			SearchFields: []string{"comments.content", "users.username", "posts.title"},
			Filters: []AdminFilter{
				{Param: "is_active", Label: "Active", Expr: "comments.is_active", Kind: ColumnBool, Choices: yesNo},
			},
			Ordering:  []string{"comments.created_at DESC", "comments.id DESC"},
			Deletable: true,
			Moderated: true,
		},
		{
			Slug:  "categories",
			Name:  "Categories",
			Table: "categories",
			Columns: []AdminColumn{
				{Label: "Name", Expr: "categories.name"},
				{Label: "Created at", Expr: "categories.created_at", Kind: ColumnTime},
			},
			SearchFields: []string{"categories.name"},
			Ordering:     []string{"categories.name"},
			Creatable:    true,
			Deletable:    true,
		},
		{
			Slug:  "tags",
			Name:  "Tags",
			Table: "tags",
			Columns: []AdminColumn{
				{Label: "Name", Expr: "tags.name"},
				{Label: "Created at", Expr: "tags.created_at", Kind: ColumnTime},
			},
			SearchFields: []string{"tags.name"},
			Ordering:     []string{"tags.name"},
			Creatable:    true,
			Deletable:    true,
		},
		{
			Slug:  "users",
			Name:  "Users",
			Table: "users",
			Scope: "users.deleted_at IS NULL",
			Columns: []AdminColumn{
				{Label: "Username", Expr: "users.username"},
				{Label: "Email", Expr: "users.email"},
				{Label: "First name", Expr: "users.first_name"},
				{Label: "Last name", Expr: "users.last_name"},
				{Label: "Staff", Expr: "users.is_staff", Kind: ColumnBool},
			},
			SearchFields: []string{"users.username", "users.email", "users.first_name", "users.last_name"},
			Filters: []AdminFilter{
				{Param: "is_staff", Label: "Staff status", Expr: "users.is_staff", Kind: ColumnBool, Choices: yesNo},
			},
			Ordering: []string{"users.username"},
		},
	}
}

type AdminQuery struct {
	Search  string
	Filters map[string]string
	Page    string
}

type AdminRow struct {
	ID    uint
	Cells []string
}

type AdminFilterState struct {
	Filter   AdminFilter
	Choices  []AdminChoice
	Selected string
}

type AdminList struct {
	Admin   *ModelAdmin
	Rows    []AdminRow
	Page    utils.Page
	Filters []AdminFilterState
	Query   AdminQuery
}

type AdminService struct {
	db       *gorm.DB
	admins   []*ModelAdmin
	posts    *PostService
	comments *CommentService
	taxonomy *TaxonomyService
}

func NewAdminService(db *gorm.DB, admins []*ModelAdmin, posts *PostService, comments *CommentService, taxonomy *TaxonomyService) *AdminService {
	return &AdminService{db: db, admins: admins, posts: posts, comments: comments, taxonomy: taxonomy}
}

func (s *AdminService) Admins() []*ModelAdmin {
	return s.admins
}

func (s *AdminService) Lookup(slug string) (*ModelAdmin, error) {
	for _, a := range s.admins {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

// List runs the change-list query for one registered entity: search terms are
// OR-ed across SearchFields, selected filters are AND-ed.
func (s *AdminService) List(ctx context.Context, slug string, q AdminQuery) (*AdminList, error) {
	admin, err := s.Lookup(slug)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.scoped(ctx, admin, q).Count(&total).Error; err != nil {
		return nil, err
	}
	page := utils.GetPage(total, AdminPerPage, q.Page)

	selects := []string{admin.Table + ".id AS id"}
	for i, col := range admin.Columns {
		selects = append(selects, fmt.Sprintf("%s AS c%d", col.Expr, i))
	}

	var results []map[string]interface{}
	tx := s.scoped(ctx, admin, q).Select(strings.Join(selects, ", "))
	for _, o := range admin.Ordering {
		tx = tx.Order(o)
	}
	if err := tx.Offset(page.Offset()).Limit(page.Limit()).Find(&results).Error; err != nil {
		return nil, err
	}

	rows := make([]AdminRow, 0, len(results))
	for _, r := range results {
		row := AdminRow{ID: toUint(r["id"])}
		for i, col := range admin.Columns {
			row.Cells = append(row.Cells, formatCell(r[fmt.Sprintf("c%d", i)], col.Kind))
		}
		rows = append(rows, row)
	}

	filters, err := s.filterStates(ctx, admin, q)
	if err != nil {
		return nil, err
	}

	return &AdminList{Admin: admin, Rows: rows, Page: page, Filters: filters, Query: q}, nil
}

func (s *AdminService) scoped(ctx context.Context, admin *ModelAdmin, q AdminQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Table(admin.Table)
	for _, j := range admin.Joins {
		tx = tx.Joins(j)
	}
	if admin.Scope != "" {
		tx = tx.Where(admin.Scope)
	}

	if q.Search != "" && len(admin.SearchFields) > 0 {
		pattern := likePattern(q.Search)
		group := s.db.Where(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, admin.SearchFields[0]), pattern)
		for _, field := range admin.SearchFields[1:] {
			group = group.Or(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, field), pattern)
		}
		tx = tx.Where(group)
	}

	for _, f := range admin.Filters {
		raw := q.Filters[f.Param]
		if raw == "" {
			continue
		}
		value, ok := f.parse(raw)
		if !ok {
			continue
		}
		tx = tx.Where(f.Expr+" = ?", value)
	}
	return tx
}

func (f AdminFilter) parse(raw string) (interface{}, bool) {
	switch {
	case f.Kind == ColumnBool:
		b, err := strconv.ParseBool(raw)
		return b, err == nil
	case f.Numeric:
		n, err := strconv.ParseUint(raw, 10, 64)
		return uint(n), err == nil
	}
	return raw, true
}

func (s *AdminService) filterStates(ctx context.Context, admin *ModelAdmin, q AdminQuery) ([]AdminFilterState, error) {
	states := make([]AdminFilterState, 0, len(admin.Filters))
	for _, f := range admin.Filters {
		state := AdminFilterState{Filter: f, Choices: f.Choices, Selected: q.Filters[f.Param]}
		if f.ChoicesSQL != "" {
			rows, err := s.db.WithContext(ctx).Raw(f.ChoicesSQL).Rows()
			if err != nil {
				return nil, err
			}
			for rows.Next() {
				var value, label interface{}
				if err := rows.Scan(&value, &label); err != nil {
					rows.Close()
					return nil, err
				}
				state.Choices = append(state.Choices, AdminChoice{Value: formatCell(value, ColumnText), Label: formatCell(label, ColumnText)})
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return nil, err
			}
			rows.Close()
		}
		states = append(states, state)
	}
	return states, nil
}

// Delete removes one row of a deletable entity through the owning service so
// that cascades match the public code paths.
func (s *AdminService) Delete(ctx context.Context, slug string, id uint) error {
	admin, err := s.Lookup(slug)
	if err != nil {
		return err
	}
	if !admin.Deletable {
		return ErrNotFound
	}

	switch slug {
	case "posts":
		post, err := s.posts.Get(ctx, id)
		if err != nil {
			return err
		}
		return s.posts.Delete(ctx, post)
	case "comments":
		return s.comments.Delete(ctx, id)
	case "categories":
		return s.taxonomy.DeleteCategory(ctx, id)
	case "tags":
		return s.taxonomy.DeleteTag(ctx, id)
	}
	return ErrNotFound
}

// ToggleActive flips a moderated row's is_active flag.
func (s *AdminService) ToggleActive(ctx context.Context, slug string, id uint) error {
	admin, err := s.Lookup(slug)
	if err != nil {
		return err
	}
	if !admin.Moderated {
		return ErrNotFound
	}
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.comments.SetActive(ctx, id, !comment.IsActive)
}

func formatCell(v interface{}, kind ColumnKind) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case time.Time:
		return val.Format("Jan 2, 2006, 15:04")
	case *time.Time:
		if val == nil {
			return "-"
		}
		return val.Format("Jan 2, 2006, 15:04")
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case []byte:
		return formatCell(string(val), kind)
	case string:
		if kind == ColumnBool {
			if b, err := strconv.ParseBool(val); err == nil {
				return formatCell(b, kind)
			}
		}
		if kind == ColumnTime {
			if t, err := time.Parse("2006-01-02 15:04:05.999999999-07:00", val); err == nil {
				return formatCell(t, kind)
			}
		}
		return val
	case int64:
		if kind == ColumnBool {
			return formatCell(val != 0, kind)
		}
		return strconv.FormatInt(val, 10)
	}
	return fmt.Sprint(v)
}

func toUint(v interface{}) uint {
	switch n := v.(type) {
	case int64:
		return uint(n)
	case int32:
		return uint(n)
	case int:
		return uint(n)
	case uint64:
		return uint(n)
	case uint:
		return n
	case []byte:
		u, _ := strconv.ParseUint(string(n), 10, 64)
		return uint(u)
	case string:
		u, _ := strconv.ParseUint(n, 10, 64)
		return uint(u)
	}
	return 0
}
