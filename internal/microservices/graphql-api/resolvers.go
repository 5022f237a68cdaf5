package graphqlapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nalanda/internal/middleware/auth"
	"nalanda/internal/microservices/http-api/dto"
	"nalanda/internal/microservices/http-api/repository"
	"nalanda/internal/microservices/http-api/service"

	"github.com/graphql-go/graphql"
)

// Resolver carries the services behind every field. Each resolver performs
// its own auth check since the soft gate never rejects a request.
type Resolver struct {
	Books   service.BookService
	Borrows service.BorrowService
	Reports service.ReportService
	Auth    service.AuthService
	Logger  *slog.Logger
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// caller returns the principal for an operation that needs one of roles, or
// any authenticated caller when roles is empty. Role-guarded operations report
// an anonymous caller as access denied.
func caller(ctx context.Context, roles ...auth.Role) (auth.Principal, error) {
	p := auth.PrincipalFrom(ctx)
	err := auth.Authorize(p, roles...)
	if errors.Is(err, auth.ErrUnauthenticated) && len(roles) > 0 {
		err = auth.ErrAccessDenied
	}
	return p, err
}

func (r *Resolver) books(p graphql.ResolveParams) (any, error) {
	filter := repository.BookFilter{
		Page:  intArg(p.Args, "page"),
		Limit: intArg(p.Args, "limit"),
	}
	filter.Genre, _ = p.Args["genre"].(string)
	filter.Author, _ = p.Args["author"].(string)

	page, err := r.Books.List(p.Context, filter)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromBookPage(page), nil
}

func (r *Resolver) book(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	b, err := r.Books.Get(p.Context, id)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromBookModel(*b), nil
}

func (r *Resolver) myHistory(p graphql.ResolveParams) (any, error) {
	principal, err := caller(p.Context)
	if err != nil {
		return nil, r.fail(p, err)
	}
	records, err := r.Borrows.History(p.Context, principal.UserID)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromRecordModels(records), nil
}

func (r *Resolver) mostBorrowedBooks(p graphql.ResolveParams) (any, error) {
	if _, err := caller(p.Context, auth.RoleAdmin); err != nil {
		return nil, r.fail(p, err)
	}
	list, err := r.Reports.MostBorrowedBooks(p.Context)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return list, nil
}

func (r *Resolver) activeMembers(p graphql.ResolveParams) (any, error) {
	if _, err := caller(p.Context, auth.RoleAdmin); err != nil {
		return nil, r.fail(p, err)
	}
	list, err := r.Reports.ActiveMembers(p.Context)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return list, nil
}

func (r *Resolver) availability(p graphql.ResolveParams) (any, error) {
	if _, err := caller(p.Context, auth.RoleAdmin); err != nil {
		return nil, r.fail(p, err)
	}
	summary, err := r.Reports.Availability(p.Context)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return summary, nil
}

func (r *Resolver) register(p graphql.ResolveParams) (any, error) {
	in, _ := p.Args["userInput"].(map[string]any)
	name, _ := in["name"].(string)
	email, _ := in["email"].(string)
	password, _ := in["password"].(string)

	user, err := r.Auth.Register(p.Context, name, email, password)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromUserModel(*user), nil
}

func (r *Resolver) login(p graphql.ResolveParams) (any, error) {
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	result, err := r.Auth.Login(p.Context, email, password)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.AuthResponse{
		Token:           result.Token,
		UserID:          result.User.ID,
		TokenExpiration: int(result.ExpiresIn / time.Hour),
	}, nil
}

func (r *Resolver) createBook(p graphql.ResolveParams) (any, error) {
	if _, err := caller(p.Context, auth.RoleAdmin); err != nil {
		return nil, r.fail(p, err)
	}

	in, _ := p.Args["bookInput"].(map[string]any)
	req := dto.CreateBookRequest{
		Title:           stringArg(in, "title"),
		Author:          stringArg(in, "author"),
		ISBN:            stringArg(in, "isbn"),
		PublicationDate: stringArg(in, "publicationDate"),
		Genre:           stringArg(in, "genre"),
	}
	if copies, ok := in["copies"].(int); ok {
		req.Copies = &copies
	}
	input, err := req.ToInput()
	if err != nil {
		return nil, r.fail(p, invalidDate)
	}

	b, err := r.Books.Create(p.Context, input)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromBookModel(*b), nil
}

func (r *Resolver) updateBook(p graphql.ResolveParams) (any, error) {
	if _, err := caller(p.Context, auth.RoleAdmin); err != nil {
		return nil, r.fail(p, err)
	}

	id, _ := p.Args["id"].(string)
	in, _ := p.Args["bookInput"].(map[string]any)
	req := dto.UpdateBookRequest{
		Title:           optionalString(in, "title"),
		Author:          optionalString(in, "author"),
		ISBN:            optionalString(in, "isbn"),
		PublicationDate: optionalString(in, "publicationDate"),
		Genre:           optionalString(in, "genre"),
	}
	if copies, ok := in["copies"].(int); ok {
		req.Copies = &copies
	}
	patch, err := req.ToPatch()
	if err != nil {
		return nil, r.fail(p, invalidDate)
	}

	b, err := r.Books.Update(p.Context, id, patch)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromBookModel(*b), nil
}

func (r *Resolver) deleteBook(p graphql.ResolveParams) (any, error) {
	if _, err := caller(p.Context, auth.RoleAdmin); err != nil {
		return nil, r.fail(p, err)
	}
	id, _ := p.Args["id"].(string)
	if err := r.Books.Delete(p.Context, id); err != nil {
		return nil, r.fail(p, err)
	}
	return true, nil
}

func (r *Resolver) borrowBook(p graphql.ResolveParams) (any, error) {
	principal, err := caller(p.Context)
	if err != nil {
		return nil, r.fail(p, err)
	}
	bookID, _ := p.Args["bookId"].(string)
	record, err := r.Borrows.Borrow(p.Context, bookID, principal.UserID)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromRecordModel(*record), nil
}

func (r *Resolver) returnBook(p graphql.ResolveParams) (any, error) {
	principal, err := caller(p.Context)
	if err != nil {
		return nil, r.fail(p, err)
	}
	bookID, _ := p.Args["bookId"].(string)
	record, err := r.Borrows.Return(p.Context, bookID, principal.UserID)
	if err != nil {
		return nil, r.fail(p, err)
	}
	return dto.FromRecordModel(*record), nil
}

func intArg(args map[string]any, name string) int {
	v, _ := args[name].(int)
	return v
}

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

func optionalString(args map[string]any, name string) *string {
	v, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &v
}
