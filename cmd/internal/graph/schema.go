package graph

import (
	"github.com/graphql-go/graphql"
)

// NewSchema builds the GraphQL schema over the resolver set.
//
// Shape:
//
//	type User { id: ID!, username: String!, yourPosts: [Post!]! }
//	type Post { id: ID!, title: String!, description: String!, user: User! }
//	type Query { me: User, allPosts: [Post!]! }
//	type Mutation { signUp, signIn, createUser, createPost, editPost, deletePost }
//
// createUser is a legacy alias of signUp kept for older clients.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	// Relations are added after construction because the types are mutually
	// recursive.
	userType.AddFieldConfig("yourPosts", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			parent, ok := p.Source.(userView)
			if !ok {
				if pv, okPtr := p.Source.(*userView); okPtr && pv != nil {
					parent = *pv
				} else {
					return nil, nil
				}
			}
			return instrument("User.yourPosts", func() (interface{}, error) {
				return r.PostsForUser(p.Context, parent.ID)
			})
		},
	})

	postType.AddFieldConfig("user", &graphql.Field{
		Type: graphql.NewNonNull(userType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			parent, ok := p.Source.(postView)
			if !ok {
				return nil, nil
			}
			return instrument("Post.user", func() (interface{}, error) {
				return r.OwnerForPost(p.Context, parent.ownerID)
			})
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return instrument("me", func() (interface{}, error) {
						u, err := r.Me(p.Context)
						if err != nil {
							return nil, err
						}
						if u == nil {
							return nil, nil
						}
						return *u, nil
					})
				},
			},
			"allPosts": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return instrument("allPosts", func() (interface{}, error) {
						return r.AllPosts(p.Context)
					})
				},
			},
		},
	})

	signUpField := func() *graphql.Field {
		return &graphql.Field{
			Type: graphql.NewNonNull(userType),
			Args: graphql.FieldConfigArgument{
				"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return instrument("signUp", func() (interface{}, error) {
					return r.SignUp(p.Context, stringArg(p, "username"), stringArg(p, "password"))
				})
			},
		}
	}

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"signUp":     signUpField(),
			"createUser": signUpField(),
			"signIn": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return instrument("signIn", func() (interface{}, error) {
						return r.SignIn(p.Context, stringArg(p, "username"), stringArg(p, "password"))
					})
				},
			},
			"createPost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return instrument("createPost", func() (interface{}, error) {
						return r.CreatePost(p.Context, stringArg(p, "title"), stringArg(p, "description"))
					})
				},
			},
			"editPost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return instrument("editPost", func() (interface{}, error) {
						return r.EditPost(p.Context, stringArg(p, "id"), stringArg(p, "title"), stringArg(p, "description"))
					})
				},
			},
			"deletePost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return instrument("deletePost", func() (interface{}, error) {
						return r.DeletePost(p.Context, stringArg(p, "id"))
					})
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}
