package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/alma-labs/storefront/internal/domain/order"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

type lineItemDoc struct {
	ProductID string  `bson:"productId"`
	Name      string  `bson:"name"`
	UnitPrice float64 `bson:"unitPrice"`
	Quantity  int     `bson:"quantity"`
	Image     string  `bson:"image,omitempty"`
}

type orderDoc struct {
	ID                string        `bson:"_id"`
	UserID            string        `bson:"userId"`
	Items             []lineItemDoc `bson:"items"`
	TotalPrice        float64       `bson:"totalPrice"`
	Status            string        `bson:"status"`
	RazorpayOrderID   string        `bson:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string        `bson:"razorpayPaymentId,omitempty"`
	RazorpaySignature string        `bson:"razorpaySignature,omitempty"`
	Version           int64         `bson:"version"`
	CreatedAt         time.Time     `bson:"createdAt"`
	UpdatedAt         time.Time     `bson:"updatedAt"`
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_, err := r.col.InsertOne(ctx, toOrderDoc(order))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("mongo: insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find order: %w", err)
	}
	return fromOrderDoc(&doc), nil
}

// Update is a conditional write on the version the order was read at, so a
// racing writer surfaces as ErrConflict instead of a silent lost update.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	doc := toOrderDoc(order)
	doc.Version = order.Version + 1

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": order.ID, "version": order.Version}, doc)
	if err != nil {
		return fmt.Errorf("mongo: update order: %w", err)
	}
	if res.MatchedCount == 0 {
		count, err := r.col.CountDocuments(ctx, bson.M{"_id": order.ID})
		if err != nil {
			return fmt.Errorf("mongo: update order: %w", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	order.Version = doc.Version
	return nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]*domain.Order, error) {
	cursor, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo: find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Order
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode order: %w", err)
		}
		out = append(out, fromOrderDoc(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterate orders: %w", err)
	}
	return out, nil
}

func toOrderDoc(o *domain.Order) *orderDoc {
	items := make([]lineItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return &orderDoc{
		ID:                o.ID,
		UserID:            o.UserID,
		Items:             items,
		TotalPrice:        o.TotalPrice,
		Status:            string(o.Status),
		RazorpayOrderID:   o.RazorpayOrderID,
		RazorpayPaymentID: o.RazorpayPaymentID,
		RazorpaySignature: o.RazorpaySignature,
		Version:           o.Version,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func fromOrderDoc(doc *orderDoc) *domain.Order {
	items := make([]domain.LineItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return &domain.Order{
		ID:                doc.ID,
		UserID:            doc.UserID,
		Items:             items,
		TotalPrice:        doc.TotalPrice,
		Status:            domain.Status(doc.Status),
		RazorpayOrderID:   doc.RazorpayOrderID,
		RazorpayPaymentID: doc.RazorpayPaymentID,
		RazorpaySignature: doc.RazorpaySignature,
		Version:           doc.Version,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}
