package service

import (
	"servicehub/marketplace-service/internal/app/marketplace/entity"
)

// UnknownProviderName подставляется вместо имени, когда провайдер
// не подгружен или запись о нем отсутствует
const UnknownProviderName = "N/A"

// TransformService превращает услугу с подгруженным провайдером в публичное
// представление: из данных провайдера наружу выходят только имя и телефон,
// email и прочие поля профиля не копируются by construction - в
// ServiceResponse для них нет полей
func TransformService(svc entity.Service) entity.ServiceResponse {
	resp := entity.ServiceResponse{
		ID:             svc.ID,
		Name:           svc.Name,
		Description:    svc.Description,
		Category:       svc.Category,
		Location:       svc.Location,
		VideoURL:       svc.VideoURL,
		Rating:         svc.Rating,
		ReviewCount:    svc.ReviewCount,
		Featured:       svc.Featured,
		ApprovalStatus: svc.ApprovalStatus,
		ProviderID:     svc.ProviderID,
		ProviderName:   UnknownProviderName,
		ProviderPhone:  nil,
		CreatedAt:      svc.CreatedAt,
	}

	if svc.Provider != nil {
		resp.ProviderName = svc.Provider.Name
		resp.ProviderPhone = svc.Provider.Phone
	}

	return resp
}

// TransformServiceWithReviews дополняет публичное представление отзывами
// Отзывы передаются дальше в том порядке, в котором их дал вызывающий
func TransformServiceWithReviews(svc entity.Service, reviews []entity.Review) entity.ServiceResponse {
	resp := TransformService(svc)
	resp.Reviews = TransformReviews(reviews)
	return resp
}

// TransformReviews превращает отзывы в публичное представление, сохраняя порядок
func TransformReviews(reviews []entity.Review) []entity.ReviewResponse {
	if reviews == nil {
		return nil
	}

	result := make([]entity.ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		result = append(result, TransformReview(rv))
	}
	return result
}

// TransformReview превращает отзыв в публичное представление
func TransformReview(rv entity.Review) entity.ReviewResponse {
	resp := entity.ReviewResponse{
		ID:         rv.ID,
		Rating:     rv.Rating,
		Comment:    rv.Comment,
		AuthorID:   rv.AuthorID,
		AuthorName: UnknownProviderName,
		CreatedAt:  rv.CreatedAt,
	}
	if rv.Author != nil {
		resp.AuthorName = rv.Author.Name
	}
	return resp
}

// TransformUser превращает пользователя в представление для админки
func TransformUser(user entity.User) entity.UserResponse {
	return entity.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}
