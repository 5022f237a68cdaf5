package graphqlapi

import (
	"github.com/graphql-go/graphql"
)

var memberType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Member",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"role":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var bookType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Book",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"title":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"author":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"isbn":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"publicationDate": &graphql.Field{Type: graphql.String},
		"genre":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"copies":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"availableCopies": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt":       &graphql.Field{Type: graphql.DateTime},
		"updatedAt":       &graphql.Field{Type: graphql.DateTime},
	},
})

var borrowRecordType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BorrowingRecord",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"bookId":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"memberId":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"status":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"borrowDate": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"returnDate": &graphql.Field{Type: graphql.DateTime},
		"book":       &graphql.Field{Type: bookType},
		"member":     &graphql.Field{Type: memberType},
	},
})

var bookPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BookPage",
	Fields: graphql.Fields{
		"books":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bookType)))},
		"total":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalPages":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"currentPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthData",
	Fields: graphql.Fields{
		"userId":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"token":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"tokenExpiration": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var bookReportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BookReport",
	Fields: graphql.Fields{
		"bookId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"title":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"author": &graphql.Field{Type: graphql.String},
		"count":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var activeMemberType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ActiveMember",
	Fields: graphql.Fields{
		"memberId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"borrowCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var availabilityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Availability",
	Fields: graphql.Fields{
		"totalBooks":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalAvailable": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalBorrowed":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalTitles":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var registerInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "RegisterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var bookInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BookInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"author":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"isbn":            &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"publicationDate": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"genre":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"copies":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
	},
})

// bookUpdateInputType has every field optional; omitted fields are unchanged.
var bookUpdateInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BookUpdateInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title":           &graphql.InputObjectFieldConfig{Type: graphql.String},
		"author":          &graphql.InputObjectFieldConfig{Type: graphql.String},
		"isbn":            &graphql.InputObjectFieldConfig{Type: graphql.String},
		"publicationDate": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"genre":           &graphql.InputObjectFieldConfig{Type: graphql.String},
		"copies":          &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

// NewSchema builds the schema with every field bound to r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"books": &graphql.Field{
				Type: graphql.NewNonNull(bookPageType),
				Args: graphql.FieldConfigArgument{
					"page":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
					"genre":  &graphql.ArgumentConfig{Type: graphql.String},
					"author": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.books,
			},
			"book": &graphql.Field{
				Type:    bookType,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: r.book,
			},
			"myHistory": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(borrowRecordType))),
				Resolve: r.myHistory,
			},
			"mostBorrowedBooks": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bookReportType))),
				Resolve: r.mostBorrowedBooks,
			},
			"activeMembers": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(activeMemberType))),
				Resolve: r.activeMembers,
			},
			"availability": &graphql.Field{
				Type:    graphql.NewNonNull(availabilityType),
				Resolve: r.availability,
			},
		},
	})

	idArg := graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}}
	bookIDArg := graphql.FieldConfigArgument{"bookId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}}

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootMutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type:    graphql.NewNonNull(memberType),
				Args:    graphql.FieldConfigArgument{"userInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(registerInputType)}},
				Resolve: r.register,
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.login,
			},
			"createBook": &graphql.Field{
				Type:    graphql.NewNonNull(bookType),
				Args:    graphql.FieldConfigArgument{"bookInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(bookInputType)}},
				Resolve: r.createBook,
			},
			"updateBook": &graphql.Field{
				Type: graphql.NewNonNull(bookType),
				Args: graphql.FieldConfigArgument{
					"id":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"bookInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(bookUpdateInputType)},
				},
				Resolve: r.updateBook,
			},
			"deleteBook": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Args:    idArg,
				Resolve: r.deleteBook,
			},
			"borrowBook": &graphql.Field{
				Type:    graphql.NewNonNull(borrowRecordType),
				Args:    bookIDArg,
				Resolve: r.borrowBook,
			},
			"returnBook": &graphql.Field{
				Type:    graphql.NewNonNull(borrowRecordType),
				Args:    bookIDArg,
				Resolve: r.returnBook,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
