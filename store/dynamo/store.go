package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/onetable/internal/keys"
	"github.com/jacentio/onetable/store"
)

// Attribute names shared by every item in the table.
const (
	AttributePK  = "pk"
	AttributeSK  = "sk"
	AttributeGSI = "gsi"
)

// Client is the subset of *dynamodb.Client used by Store.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

type blogItem struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	GSI       string `dynamodbav:"gsi"`
	Name      string `dynamodbav:"name"`
	Slug      string `dynamodbav:"slug"`
	CreatedAt string `dynamodbav:"createdAt,omitempty"`
}

type postItem struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	Title     string `dynamodbav:"title"`
	Content   string `dynamodbav:"content"`
	ViewCount int    `dynamodbav:"viewCount"`
	CreatedAt string `dynamodbav:"createdAt,omitempty"`
}

type slugGuardItem struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	BlogID string `dynamodbav:"blogId"`
}

// Store implements store.Store on a single DynamoDB table.
type Store struct {
	client Client
	config Config

	newBlogID func() string
	newPostID func() string
	now       func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates a new Store instance.
func New(client Client, config Config) *Store {
	config.validate()
	return &Store{
		client:    client,
		config:    config,
		newBlogID: uuid.NewString,
		newPostID: newTimeOrderedID,
		now:       time.Now,
	}
}

// newTimeOrderedID returns a UUIDv7 so post sort keys follow creation order.
func newTimeOrderedID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CreateBlog writes the blog, its slug guard and its posts in one transaction.
func (s *Store) CreateBlog(ctx context.Context, in store.CreateBlogInput) (*store.Blog, error) {
	if len(in.Posts) > store.MaxInitialPosts {
		return nil, fmt.Errorf("%w: got %d, max %d", store.ErrTooManyPosts, len(in.Posts), store.MaxInitialPosts)
	}

	existing, err := s.findBlogBySlug(ctx, in.Slug)
	if err != nil {
		return nil, fmt.Errorf("lookup slug: %w", err)
	}
	if existing != nil {
		return nil, store.ErrConflict
	}

	blogID := s.newBlogID()
	now := s.now().UTC().Format(time.RFC3339Nano)

	cond, err := notExistsCondition()
	if err != nil {
		return nil, err
	}

	guard, err := attributevalue.MarshalMap(slugGuardItem{
		PK:     keys.SlugGuard(in.Slug),
		SK:     keys.SlugGuard(in.Slug),
		BlogID: blogID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal slug guard: %w", err)
	}

	blog, err := attributevalue.MarshalMap(blogItem{
		PK:        keys.Blog(blogID),
		SK:        keys.Blog(blogID),
		GSI:       keys.BlogSlug(in.Slug),
		Name:      in.Name,
		Slug:      in.Slug,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal blog: %w", err)
	}

	// Guard first, blog second: mapCreateBlogError relies on these indices.
	items := []types.TransactWriteItem{
		{Put: s.conditionalPut(guard, cond)},
		{Put: s.conditionalPut(blog, cond)},
	}

	for _, p := range in.Posts {
		post, err := attributevalue.MarshalMap(postItem{
			PK:        keys.Posts(blogID),
			SK:        s.newPostID(),
			Title:     p.Title,
			Content:   p.Content,
			ViewCount: 0,
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal post: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.config.TableName),
				Item:      post,
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err := mapCreateBlogError(err); err != nil {
		return nil, err
	}

	return &store.Blog{
		ID:   blogID,
		Name: in.Name,
		Slug: in.Slug,
	}, nil
}

// CreatePost adds a post to the partition of an existing blog.
func (s *Store) CreatePost(ctx context.Context, in store.CreatePostInput) (*store.Post, error) {
	if in.BlogID == "" {
		return nil, store.ErrNotFound
	}

	blog, err := s.getBlog(ctx, in.BlogID)
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	if blog == nil {
		return nil, store.ErrNotFound
	}

	cond, err := notExistsCondition()
	if err != nil {
		return nil, err
	}

	id := s.newPostID()
	item, err := attributevalue.MarshalMap(postItem{
		PK:        keys.Posts(in.BlogID),
		SK:        id,
		Title:     in.Title,
		Content:   in.Content,
		ViewCount: 0,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal post: %w", err)
	}

	put := s.conditionalPut(item, cond)
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 put.TableName,
		Item:                      put.Item,
		ConditionExpression:       put.ConditionExpression,
		ExpressionAttributeNames:  put.ExpressionAttributeNames,
		ExpressionAttributeValues: put.ExpressionAttributeValues,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, fmt.Errorf("put post: id %s already exists: %w", id, err)
		}
		return nil, fmt.Errorf("put post: %w", err)
	}

	return &store.Post{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		ViewCount: 0,
		BlogID:    in.BlogID,
	}, nil
}

// RetrieveBlog looks a blog up by id, or through the slug index when no id is given.
func (s *Store) RetrieveBlog(ctx context.Context, in store.RetrieveBlogInput) (*store.Blog, error) {
	var (
		item *blogItem
		err  error
	)
	switch {
	case in.ID != "":
		item, err = s.getBlog(ctx, in.ID)
	case in.Slug != "":
		item, err = s.findBlogBySlug(ctx, in.Slug)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve blog: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	id, ok := keys.BlogID(item.PK)
	if !ok {
		return nil, fmt.Errorf("retrieve blog: malformed key %q", item.PK)
	}

	blog := &store.Blog{
		ID:   id,
		Name: item.Name,
		Slug: item.Slug,
	}

	if in.IncludePosts {
		posts, err := s.queryPosts(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("query posts: %w", err)
		}
		blog.Posts = posts
	}

	return blog, nil
}

// getBlog reads a blog item by id, returning nil when it does not exist.
func (s *Store) getBlog(ctx context.Context, id string) (*blogItem, error) {
	key := keys.Blog(id)
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key: map[string]types.AttributeValue{
			AttributePK: &types.AttributeValueMemberS{Value: key},
			AttributeSK: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}

	var item blogItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal blog: %w", err)
	}
	return &item, nil
}

// findBlogBySlug queries the slug index, returning nil when no blog matches.
// Slugs are unique, so only the first match is considered.
func (s *Store) findBlogBySlug(ctx context.Context, slug string) (*blogItem, error) {
	keyCond := expression.Key(AttributeGSI).Equal(expression.Value(keys.BlogSlug(slug)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build slug query: %w", err)
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		IndexName:                 aws.String(s.config.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var item blogItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("unmarshal blog: %w", err)
	}
	return &item, nil
}

// queryPosts returns up to store.PostsLimit posts of a blog, newest first.
func (s *Store) queryPosts(ctx context.Context, blogID string) ([]store.Post, error) {
	keyCond := expression.Key(AttributePK).Equal(expression.Value(keys.Posts(blogID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build posts query: %w", err)
	}

	posts := make([]store.Post, 0)
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(store.PostsLimit),
	})
	for paginator.HasMorePages() && len(posts) < store.PostsLimit {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			if len(posts) == store.PostsLimit {
				break
			}
			var item postItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshal post: %w", err)
			}
			posts = append(posts, store.Post{
				ID:        item.SK,
				Title:     item.Title,
				Content:   item.Content,
				ViewCount: item.ViewCount,
				BlogID:    blogID,
			})
		}
	}

	return posts, nil
}

// conditionalPut builds a put that only succeeds when the key is unused.
func (s *Store) conditionalPut(item map[string]types.AttributeValue, cond expression.Expression) *types.Put {
	return &types.Put{
		TableName:                 aws.String(s.config.TableName),
		Item:                      item,
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	}
}

func notExistsCondition() (expression.Expression, error) {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(AttributePK))).
		Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build condition: %w", err)
	}
	return expr, nil
}

// mapCreateBlogError maps a CreateBlog transaction failure. A failed condition on
// the slug guard (index 0) means another writer claimed the slug first.
func mapCreateBlogError(err error) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
				continue
			}
			if i == 0 {
				return store.ErrConflict
			}
			return fmt.Errorf("write blog: key already exists: %w", err)
		}
	}

	return fmt.Errorf("write blog: %w", err)
}
