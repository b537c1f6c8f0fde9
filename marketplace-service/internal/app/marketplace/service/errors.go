package service

import "errors"

var (
	// ErrUnauthorized - действие запрещено для этого пользователя
	ErrUnauthorized = errors.New("not allowed to perform this action")
	// ErrOwnServiceReview - поставщик пытается оставить отзыв на свою услугу
	ErrOwnServiceReview = errors.New("cannot review your own service")
	// ErrServiceNotApproved - операция доступна только для опубликованных услуг
	ErrServiceNotApproved = errors.New("service is not approved")
)
