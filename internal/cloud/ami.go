package cloud

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EC2ClientInterface — подмножество клиента EC2, необходимое резолверу.
// Выделено в интерфейс для подмены в тестах.
type EC2ClientInterface interface {
	DescribeImages(ctx context.Context, input *ec2.DescribeImagesInput, opts ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
}

// AMIResolver находит свежий образ машины для семейства, указанного
// в конфигурации (aws.ami_type).
type AMIResolver struct {
	client EC2ClientInterface
}

// Семейство образов: шаблон имени и аккаунт-владелец в каталоге AWS.
type imageFamily struct {
	namePattern string
	owner       string
}

var imageFamilies = map[string]imageFamily{
	"amazon-linux": {namePattern: "al2023-ami-2023*-x86_64", owner: "137112412989"},
	"ubuntu":       {namePattern: "ubuntu/images/hvm-ssd/ubuntu-jammy-22.04-amd64-server-*", owner: "099720109477"},
}

// New создаёт резолвер с настоящим клиентом EC2.
func New(ctx context.Context, region string) (*AMIResolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию AWS: %w", err)
	}
	return &AMIResolver{client: ec2.NewFromConfig(cfg)}, nil
}

// NewWithClient создаёт резолвер с подменённым клиентом (для тестов).
func NewWithClient(client EC2ClientInterface) *AMIResolver {
	return &AMIResolver{client: client}
}

// LatestImage возвращает идентификатор самого свежего доступного образа
// для данного семейства.
func (r *AMIResolver) LatestImage(ctx context.Context, amiType string) (string, error) {
	family, ok := imageFamilies[amiType]
	if !ok {
		return "", fmt.Errorf("неизвестный тип AMI '%s'", amiType)
	}

	resp, err := r.client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{family.owner},
		Filters: []types.Filter{
			{Name: aws.String("name"), Values: []string{family.namePattern}},
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("не удалось получить список образов: %w", err)
	}
	if len(resp.Images) == 0 {
		return "", fmt.Errorf("не найдено ни одного образа для семейства '%s'", amiType)
	}

	images := resp.Images
	// CreationDate в формате RFC3339, лексикографическое сравнение корректно.
	sort.Slice(images, func(i, j int) bool {
		return aws.ToString(images[i].CreationDate) > aws.ToString(images[j].CreationDate)
	})
	return aws.ToString(images[0].ImageId), nil
}
